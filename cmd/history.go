package cmd

import (
	"post-dedup/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "按时间倒序列出历史投稿",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
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

			if err := printJSON(cmd, svc.History(ctx, limit)); err != nil {
				zap.S().Errorf("输出结果失败:%s", err.Error())
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "返回条数")
	return cmd
}
