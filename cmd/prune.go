package cmd

import (
	"post-dedup/pkg/signals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewPruneCommand() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "删除超过保留天数的历史投稿",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				zap.S().Error(err.Error())
				return
			}
			if !cmd.Flags().Changed("days") {
				days = cfg.Dedup.RetentionDays
			}

			ctx := signals.SetupSignalHandler()
			st, svc, err := openService(ctx, cfg)
			if err != nil {
				zap.S().Errorf("打开存储失败:%s", err.Error())
				return
			}
			defer st.Close()

			if _, err := svc.Prune(ctx, days); err != nil {
				return
			}
			count, err := st.Count(ctx)
			if err != nil {
				zap.S().Warnf("获取统计信息失败:%s", err.Error())
				return
			}
			zap.S().Infof("剩余投稿数量: %d", count)
		},
	}

	cmd.Flags().IntVar(&days, "days", 90, "保留天数，默认使用配置文件中的值")
	return cmd
}
