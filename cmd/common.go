package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"post-dedup/config"
	"post-dedup/pkg/logger"
	"post-dedup/pkg/service"
	"post-dedup/pkg/store"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "./etc/config.yaml"

// loadConfig 读取并校验配置，然后按配置初始化日志。
// 未显式指定且默认路径不存在时使用默认配置。
func loadConfig(cmd *cobra.Command) (*config.GlobalConfig, error) {
	configFilePath, _ := cmd.Flags().GetString("config")
	cfg, err := config.TryLoadFromDisk(configFilePath)
	if err != nil {
		if !os.IsNotExist(err) || cmd.Flags().Changed("config") {
			return nil, pkgerrors.Errorf("读取本地配置文件错误:%s", err.Error())
		}
		zap.S().Warnf("配置文件 %s 不存在，使用默认配置", configFilePath)
		cfg = config.NewDefaultGlobalConfig()
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, pkgerrors.Errorf("本地配置文件验证错误:%s", errors.Join(errs...))
	}
	if _, err := logger.Init(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openService 打开配置的存储并构建 HistoryService，调用方负责关闭返回的 store
func openService(ctx context.Context, cfg *config.GlobalConfig) (store.Store, *service.HistoryService, error) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc, err := service.NewHistoryService(st, cfg.Dedup, cfg.Vocabulary)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, svc, nil
}

// readContent 优先使用 --content，否则读取 --file，"-" 表示标准输入
func readContent(cmd *cobra.Command, content, file string) (string, error) {
	if content != "" {
		return content, nil
	}
	switch file {
	case "":
		return "", pkgerrors.New("需要指定 --content 或 --file")
	case "-":
		bytes, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", pkgerrors.Wrap(err, "读取标准输入失败")
		}
		return strings.TrimRight(string(bytes), "\n"), nil
	default:
		bytes, err := os.ReadFile(file)
		if err != nil {
			return "", pkgerrors.Wrapf(err, "读取文件 %s 失败", file)
		}
		return strings.TrimRight(string(bytes), "\n"), nil
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func addContentFlags(cmd *cobra.Command, content, file, topic, postType *string) {
	cmd.Flags().StringVar(content, "content", "", "投稿内容")
	cmd.Flags().StringVarP(file, "file", "f", "", "从文件读取投稿内容，- 表示标准输入")
	cmd.Flags().StringVarP(topic, "topic", "t", "", "主题")
	cmd.Flags().StringVarP(postType, "type", "p", "", "投稿类型")
}
