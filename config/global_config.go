package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type IConfig interface {
	Validate() []error
}

type GlobalConfig struct {
	Storage      *StorageConfig    `json:"storage" yaml:"storage"`
	DuckDBConfig *DuckDBConfig     `json:"duckdb" yaml:"duckdb"`
	MySQLConfig  *MySQLConfig      `json:"mysql" yaml:"mysql"`
	SQLiteConfig *SQLiteConfig     `json:"sqlite" yaml:"sqlite"`
	Dedup        *DedupConfig      `json:"dedup" yaml:"dedup"`
	Vocabulary   *VocabularyConfig `json:"vocabulary" yaml:"vocabulary"`
	Log          *LogConfig        `json:"log" yaml:"log"`
}

func (g *GlobalConfig) Validate() []error {
	var errs = make([]error, 0)
	if g.Storage == nil {
		errs = append(errs, errors.Errorf("storage 配置未设置"))
	} else {
		errs = append(errs, g.Storage.Validate()...)
		// 只校验当前选中的存储后端
		switch g.Storage.Driver {
		case DriverDuckDB:
			if g.DuckDBConfig == nil {
				errs = append(errs, errors.Errorf("DuckDB 配置未设置"))
			} else {
				errs = append(errs, g.DuckDBConfig.Validate()...)
			}
		case DriverMySQL:
			if g.MySQLConfig == nil {
				errs = append(errs, errors.Errorf("MySQL 配置未设置"))
			} else {
				errs = append(errs, g.MySQLConfig.Validate()...)
			}
		case DriverSQLite:
			if g.SQLiteConfig == nil {
				errs = append(errs, errors.Errorf("SQLite 配置未设置"))
			} else {
				errs = append(errs, g.SQLiteConfig.Validate()...)
			}
		}
	}
	if g.Dedup != nil {
		errs = append(errs, g.Dedup.Validate()...)
	}
	if g.Vocabulary != nil {
		errs = append(errs, g.Vocabulary.Validate()...)
	}
	if g.Log != nil {
		errs = append(errs, g.Log.Validate()...)
	}
	return errs
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Storage:      NewDefaultStorageConfig(),
		DuckDBConfig: NewDefaultDuckDBConfig(),
		MySQLConfig:  NewDefaultMySQLConfig(),
		SQLiteConfig: NewDefaultSQLiteConfig(),
		Dedup:        NewDefaultDedupConfig(),
		Vocabulary:   NewDefaultVocabularyConfig(),
		Log:          NewDefaultLogConfig(),
	}
}

func TryLoadFromDisk(configFilePath string) (*GlobalConfig, error) {
	_, err := os.Stat(configFilePath)
	if err != nil {
		return nil, err
	}
	dir, file := filepath.Split(configFilePath)
	fileType := filepath.Ext(file)
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName(strings.TrimSuffix(file, fileType))
	v.SetConfigType(strings.TrimPrefix(fileType, "."))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
		return nil, errors.Errorf("解析配置文件错误:%s", err.Error())
	}
	cfg := NewDefaultGlobalConfig()
	if err := v.Unmarshal(cfg, func(config *mapstructure.DecoderConfig) {
		config.TagName = tagNameFor(fileType)
	}); err != nil {
		return nil, err
	}
	// 词表可以单独放在一个文件里，覆盖内联配置
	if cfg.Vocabulary != nil && cfg.Vocabulary.File != "" {
		vocabPath := cfg.Vocabulary.File
		if !filepath.IsAbs(vocabPath) {
			vocabPath = filepath.Join(dir, vocabPath)
		}
		vocab, err := LoadVocabulary(vocabPath)
		if err != nil {
			return nil, err
		}
		cfg.Vocabulary = vocab
	}
	return cfg, nil
}

// tagNameFor yml 文件沿用 yaml 标签
func tagNameFor(fileType string) string {
	tag := strings.TrimPrefix(fileType, ".")
	if tag == "yml" {
		return "yaml"
	}
	return tag
}
