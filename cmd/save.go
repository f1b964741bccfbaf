package cmd

import (
	"post-dedup/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewSaveCommand() *cobra.Command {
	var content, file, topic, postType, day string
	var checkFirst bool

	cmd := &cobra.Command{
		Use:   "save",
		Short: "将已发布的投稿写入历史",
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

			if checkFirst {
				saved, matches := svc.CheckAndSave(ctx, text, topic, postType, day)
				if !saved && len(matches) > 0 {
					zap.S().Warnf("内容与历史重复（%s, 相似度 %.3f），未保存", matches[0].Category, matches[0].Similarity)
					printJSON(cmd, checkOutput{IsDuplicate: true, Matches: matches})
					return
				}
				if saved {
					zap.S().Info("投稿已保存")
				}
				return
			}
			if svc.Save(ctx, text, topic, postType, day) {
				zap.S().Info("投稿已保存")
			}
		},
	}

	addContentFlags(cmd, &content, &file, &topic, &postType)
	cmd.Flags().StringVarP(&day, "day", "d", "", "投稿日（例如 mon）")
	cmd.Flags().BoolVar(&checkFirst, "check", false, "保存前先做重复检查，检查与保存串行执行")
	return cmd
}
