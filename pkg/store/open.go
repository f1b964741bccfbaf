package store

import (
	"context"

	"post-dedup/config"
	"post-dedup/pkg/db"

	"github.com/pkg/errors"
)

// Open 按 storage.driver 打开对应的存储后端
func Open(ctx context.Context, cfg *config.GlobalConfig) (Store, error) {
	if cfg == nil || cfg.Storage == nil {
		return nil, errors.New("storage 配置未设置")
	}
	return OpenDriver(ctx, cfg, cfg.Storage.Driver)
}

// OpenDriver 打开指定类型的存储，迁移时源和目标使用不同的 driver
func OpenDriver(ctx context.Context, cfg *config.GlobalConfig, driver string) (Store, error) {
	switch driver {
	case config.DriverDuckDB:
		duckDB, err := db.OpenDuckDB(ctx, cfg.DuckDBConfig)
		if err != nil {
			return nil, wrapErr("open duckdb", err)
		}
		return NewDuckDBStore(duckDB), nil
	case config.DriverMySQL:
		gdb, err := db.InitTiDB(ctx, cfg.MySQLConfig)
		if err != nil {
			return nil, wrapErr("open mysql", err)
		}
		return NewGormStore(gdb), nil
	case config.DriverSQLite:
		gdb, err := db.InitSQLite(ctx, cfg.SQLiteConfig)
		if err != nil {
			return nil, wrapErr("open sqlite", err)
		}
		return NewGormStore(gdb), nil
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.Errorf("不支持的存储类型: %q", driver)
	}
}

// OpenSource 以只读迁移源的方式打开存储：不建表、不修改已有表结构，表不存在时报错
func OpenSource(ctx context.Context, cfg *config.GlobalConfig, driver string) (Store, error) {
	switch driver {
	case config.DriverDuckDB:
		duckDB, err := db.OpenDuckDBSource(ctx, cfg.DuckDBConfig)
		if err != nil {
			return nil, wrapErr("open duckdb source", err)
		}
		return NewDuckDBStore(duckDB), nil
	case config.DriverMySQL:
		gdb, err := db.OpenTiDBSource(ctx, cfg.MySQLConfig)
		if err != nil {
			return nil, wrapErr("open mysql source", err)
		}
		return NewGormStore(gdb), nil
	case config.DriverSQLite:
		gdb, err := db.OpenSQLiteSource(ctx, cfg.SQLiteConfig)
		if err != nil {
			return nil, wrapErr("open sqlite source", err)
		}
		return NewGormStore(gdb), nil
	default:
		return nil, errors.Errorf("不支持的迁移源类型: %q", driver)
	}
}
