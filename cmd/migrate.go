package cmd

import (
	"post-dedup/config"
	"post-dedup/pkg/service"
	"post-dedup/pkg/signals"
	"post-dedup/pkg/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewMigrateCommand() *cobra.Command {
	var source string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "将旧存储中的投稿历史迁移到当前存储",
		Long:  "从 MySQL/TiDB 或 sqlite 的 post_history 表分批读取，用当前词表重新计算指纹、关键词和要点后写入配置的存储（默认 DuckDB）",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				zap.S().Error(err.Error())
				return
			}
			if source == cfg.Storage.Driver {
				zap.S().Errorf("源存储与目标存储相同: %s", source)
				return
			}
			if source == config.DriverMySQL {
				if errs := cfg.MySQLConfig.Validate(); len(errs) > 0 {
					zap.S().Errorf("MySQL 配置错误:%v", errs)
					return
				}
			}

			ctx := signals.SetupSignalHandler()

			// 初始化源存储，只读不改表结构
			src, err := store.OpenSource(ctx, cfg, source)
			if err != nil {
				zap.S().Errorf("源存储连接错误:%s", err.Error())
				return
			}
			defer src.Close()

			// 初始化目标存储
			dst, svc, err := openService(ctx, cfg)
			if err != nil {
				zap.S().Errorf("目标存储连接错误:%s", err.Error())
				return
			}
			defer dst.Close()

			// 执行迁移
			migrationService := service.NewMigrationService(svc.Processor())
			if _, err := migrationService.Migrate(ctx, src, dst, batchSize); err != nil {
				zap.S().Errorf("迁移失败:%s", err.Error())
				return
			}

			// 显示统计信息
			count, err := dst.Count(ctx)
			if err != nil {
				zap.S().Warnf("获取统计信息失败:%s", err.Error())
			} else {
				zap.S().Infof("目标存储中的投稿数量: %d", count)
			}
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", config.DriverMySQL, "源存储类型 mysql|sqlite|duckdb")
	cmd.Flags().IntVarP(&batchSize, "batch-size", "b", 100, "批量处理大小")
	return cmd
}
