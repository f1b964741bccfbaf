package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	DuckDBAccessReadWrite = "read_write"
	DuckDBAccessReadOnly  = "read_only"
)

// DuckDBConfig 历史记录的 DuckDB 文件，连接参数通过字段给出而不是写在路径里
type DuckDBConfig struct {
	DBPath     string `json:"dbPath" yaml:"dbPath"`         // DuckDB 数据库文件路径
	AccessMode string `json:"accessMode" yaml:"accessMode"` // 空、read_write 或 read_only
}

func (d *DuckDBConfig) Validate() []error {
	var errs = make([]error, 0)
	if d.DBPath == "" {
		errs = append(errs, errors.Errorf("DuckDB 数据库路径不能为空"))
		return errs
	}
	// 内存库不落盘，需要内存存储时使用 storage.driver=memory
	if d.DBPath == ":memory:" || strings.HasPrefix(d.DBPath, ":memory:") {
		errs = append(errs, errors.Errorf("DuckDB 路径不能是内存库，请改用 memory 存储"))
	}
	if strings.Contains(d.DBPath, "?") {
		errs = append(errs, errors.Errorf("DuckDB 路径中不能带连接参数: %s", d.DBPath))
	}
	switch d.AccessMode {
	case "", DuckDBAccessReadWrite, DuckDBAccessReadOnly:
	default:
		errs = append(errs, errors.Errorf("DuckDB accessMode 错误: %q", d.AccessMode))
	}
	if len(errs) > 0 {
		return errs
	}

	// 只读模式下文件必须已经存在，不创建目录
	if d.AccessMode == DuckDBAccessReadOnly {
		if _, err := os.Stat(d.DBPath); err != nil {
			errs = append(errs, errors.Errorf("只读模式下 DuckDB 文件必须存在: %v", err))
		}
		return errs
	}
	if err := os.MkdirAll(filepath.Dir(d.DBPath), 0755); err != nil {
		errs = append(errs, errors.Errorf("创建 DuckDB 目录失败: %v", err))
	}
	return errs
}

func NewDefaultDuckDBConfig() *DuckDBConfig {
	return &DuckDBConfig{
		DBPath: "./data/post_history.duckdb",
	}
}

// ReadOnly 返回只读副本，迁移源使用
func (d *DuckDBConfig) ReadOnly() *DuckDBConfig {
	c := *d
	c.AccessMode = DuckDBAccessReadOnly
	return &c
}

// DSN 路径加上 access_mode 参数
func (d *DuckDBConfig) DSN() string {
	if d.AccessMode == "" {
		return d.DBPath
	}
	params := url.Values{}
	params.Set("access_mode", strings.ToUpper(d.AccessMode))
	return d.DBPath + "?" + params.Encode()
}
