package config

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level    string `json:"level" yaml:"level"`       // debug/info/warn/error
	Encoding string `json:"encoding" yaml:"encoding"` // json 或 console
}

func (l *LogConfig) Validate() []error {
	var errs = make([]error, 0)
	if _, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level))); err != nil {
		errs = append(errs, errors.Errorf("日志级别错误: %q", l.Level))
	}
	switch l.Encoding {
	case "json", "console":
	default:
		errs = append(errs, errors.Errorf("日志格式错误: %q", l.Encoding))
	}
	return errs
}

func NewDefaultLogConfig() *LogConfig {
	return &LogConfig{
		Level:    "info",
		Encoding: "console",
	}
}
