package db

import (
	"context"
	"database/sql"
	"os"

	"post-dedup/config"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// duckDBSchema post_history 表结构，id 由序列生成
var duckDBSchema = []string{
	`CREATE SEQUENCE IF NOT EXISTS post_history_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS post_history (
		id BIGINT PRIMARY KEY DEFAULT nextval('post_history_id_seq'),
		content TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		normalized_content TEXT NOT NULL,
		topic TEXT,
		post_type TEXT,
		day TEXT,
		char_count INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
		keywords TEXT,
		main_points TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_content_hash ON post_history(content_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_topic ON post_history(topic)`,
	`CREATE INDEX IF NOT EXISTS idx_post_type ON post_history(post_type)`,
	`CREATE INDEX IF NOT EXISTS idx_created_at ON post_history(created_at)`,
}

// OpenDuckDB 打开 duckdb 连接并初始化表结构，调用方负责 Close
func OpenDuckDB(ctx context.Context, cfg *config.DuckDBConfig) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("DuckDB 配置未设置")
	}
	duckDB, err := sql.Open("duckdb", cfg.DSN())
	if err != nil {
		zap.S().Errorf("连接 duckdb 失败: %v", err)
		return nil, errors.Wrap(err, "连接 duckdb 失败")
	}

	// 测试连接
	if err = duckDB.PingContext(ctx); err != nil {
		zap.S().Errorf("duckdb 连接测试失败: %v", err)
		duckDB.Close()
		return nil, errors.Wrap(err, "duckdb 连接测试失败")
	}

	// 只读库不能建表，只检查表是否存在
	if cfg.AccessMode == config.DuckDBAccessReadOnly {
		err = requireDuckDBTable(ctx, duckDB)
	} else {
		err = EnsureDuckDBSchema(ctx, duckDB)
	}
	if err != nil {
		duckDB.Close()
		return nil, err
	}

	zap.S().Debug("duckdb 初始化完成...")
	return duckDB, nil
}

// OpenDuckDBSource 以只读方式打开已有的 duckdb 文件作为迁移源，不建表
func OpenDuckDBSource(ctx context.Context, cfg *config.DuckDBConfig) (*sql.DB, error) {
	if cfg == nil {
		return nil, errors.New("DuckDB 配置未设置")
	}
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, errors.Wrapf(err, "DuckDB 源文件 %s 不可用", cfg.DBPath)
	}
	return OpenDuckDB(ctx, cfg.ReadOnly())
}

func requireDuckDBTable(ctx context.Context, duckDB *sql.DB) error {
	var tables int
	err := duckDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'post_history'`).Scan(&tables)
	if err != nil {
		return errors.Wrap(err, "查询 duckdb 表信息失败")
	}
	if tables == 0 {
		return errors.New("库中不存在 post_history 表")
	}
	return nil
}

// EnsureDuckDBSchema 建表建索引，可重复执行
func EnsureDuckDBSchema(ctx context.Context, duckDB *sql.DB) error {
	for _, stmt := range duckDBSchema {
		if _, err := duckDB.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "初始化 duckdb 表结构失败")
		}
	}
	zap.S().Debug("DuckDB 表结构就绪")
	return nil
}
