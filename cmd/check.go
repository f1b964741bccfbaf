package cmd

import (
	"os"

	"post-dedup/pkg/model"
	"post-dedup/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type checkOutput struct {
	IsDuplicate bool                   `json:"is_duplicate"`
	Matches     []model.DuplicateMatch `json:"matches"`
}

func NewCheckCommand() *cobra.Command {
	var content, file, topic, postType string
	var threshold float64
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "检查投稿是否与历史重复",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				zap.S().Error(err.Error())
				return
			}
			text, err := readContent(cmd, content, file)
			if err != nil {
				zap.S().Error(err.Error())
				return
			}

			ctx := signals.SetupSignalHandler()
			st, svc, err := openService(ctx, cfg)
			if err != nil {
				zap.S().Errorf("打开存储失败:%s", err.Error())
				return
			}
			defer st.Close()

			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Dedup.Threshold
			}
			isDuplicate, matches := svc.CheckWithThreshold(ctx, text, topic, postType, threshold)
			if err := printJSON(cmd, checkOutput{IsDuplicate: isDuplicate, Matches: matches}); err != nil {
				zap.S().Errorf("输出结果失败:%s", err.Error())
				return
			}
			if isDuplicate && exitCode {
				st.Close()
				os.Exit(2)
			}
		},
	}

	addContentFlags(cmd, &content, &file, &topic, &postType)
	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "相似度阈值，默认使用配置文件中的值")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "判定为重复时以状态码 2 退出")
	return cmd
}
