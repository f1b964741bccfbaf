package cmd

import (
	"post-dedup/pkg/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "post-dedup",
		Short: "投稿历史与重复检测工具",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableNoDescFlag:   true,
			DisableDescriptions: true,
			HiddenDefaultCmd:    true,
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "配置文件路径")

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewSaveCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewPruneCommand())
	rootCmd.AddCommand(NewMigrateCommand())

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		zap.S().Info("使用 'check' / 'save' / 'history' / 'prune' / 'migrate' 子命令")
		cmd.Help()
	}
	rootCmd.Version = util.GetVersion().Version
	return rootCmd
}
