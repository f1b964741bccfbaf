package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	DriverDuckDB = "duckdb"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// StorageConfig 选择历史记录的存储后端
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`
}

func (s *StorageConfig) Validate() []error {
	var errs = make([]error, 0)
	switch s.Driver {
	case DriverDuckDB, DriverMySQL, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, errors.Errorf("不支持的存储类型: %q", s.Driver))
	}
	return errs
}

func NewDefaultStorageConfig() *StorageConfig {
	return &StorageConfig{Driver: DriverDuckDB}
}

// MySQLConfig TiDB/MySQL 连接配置，Replicas 为只读副本
type MySQLConfig struct {
	DSN          string   `json:"dsn" yaml:"dsn"`
	Replicas     []string `json:"replicas" yaml:"replicas"`
	MaxOpenConns int      `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns int      `json:"maxIdleConns" yaml:"maxIdleConns"`
}

func (m *MySQLConfig) Validate() []error {
	var errs = make([]error, 0)
	if strings.TrimSpace(m.DSN) == "" {
		errs = append(errs, errors.Errorf("MySQL DSN 不能为空"))
	}
	if m.MaxOpenConns < 1 {
		errs = append(errs, errors.Errorf("MySQL maxOpenConns 必须 >= 1"))
	}
	if m.MaxIdleConns < 0 || m.MaxIdleConns > m.MaxOpenConns {
		errs = append(errs, errors.Errorf("MySQL maxIdleConns (%d) 必须在 0 和 maxOpenConns (%d) 之间", m.MaxIdleConns, m.MaxOpenConns))
	}
	return errs
}

func NewDefaultMySQLConfig() *MySQLConfig {
	return &MySQLConfig{
		MaxOpenConns: 8,
		MaxIdleConns: 2,
	}
}

type SQLiteConfig struct {
	DBPath string `json:"dbPath" yaml:"dbPath"` // SQLite 数据库文件路径
}

func (s *SQLiteConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.DBPath == "" {
		errs = append(errs, errors.Errorf("SQLite 数据库路径不能为空"))
		return errs
	}
	if s.DBPath == ":memory:" {
		return errs
	}
	if err := os.MkdirAll(filepath.Dir(s.DBPath), 0755); err != nil {
		errs = append(errs, errors.Errorf("创建 SQLite 目录失败: %v", err))
	}
	return errs
}

func NewDefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		DBPath: "./data/post_history.sqlite",
	}
}
