package logger

import (
	"strings"

	"post-dedup/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init 按配置构建 zap 日志并替换全局 logger，返回的 logger 需要在退出前 Sync
func Init(cfg *config.LogConfig) (*zap.Logger, error) {
	if cfg == nil {
		cfg = config.NewDefaultLogConfig()
	}
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, errors.Wrapf(err, "解析日志级别 %q 失败", cfg.Level)
	}

	var zc zap.Config
	if cfg.Encoding == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "初始化日志失败")
	}
	zap.ReplaceGlobals(l)
	return l, nil
}
