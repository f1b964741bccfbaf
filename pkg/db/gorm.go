package db

import (
	"context"
	"os"
	"path/filepath"

	"post-dedup/config"
	"post-dedup/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	}
}

// InitTiDB 连接 TiDB/MySQL 并建表，配置了只读副本时通过 dbresolver 做读写分离
func InitTiDB(ctx context.Context, cfg *config.MySQLConfig) (*gorm.DB, error) {
	gdb, err := openTiDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := migrateGorm(gdb); err != nil {
		closeGorm(gdb)
		return nil, err
	}
	zap.S().Debug("MySQL 初始化完成...")
	return gdb, nil
}

// OpenTiDBSource 以迁移源的方式连接 TiDB/MySQL，不修改表结构，只要求 post_history 已存在
func OpenTiDBSource(ctx context.Context, cfg *config.MySQLConfig) (*gorm.DB, error) {
	gdb, err := openTiDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := requireTable(gdb); err != nil {
		closeGorm(gdb)
		return nil, err
	}
	return gdb, nil
}

func openTiDB(ctx context.Context, cfg *config.MySQLConfig) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("MySQL 配置未设置")
	}
	gdb, err := gorm.Open(mysql.Open(cfg.DSN), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "连接 MySQL 失败")
	}

	if len(cfg.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(cfg.Replicas))
		for _, dsn := range cfg.Replicas {
			replicas = append(replicas, mysql.Open(dsn))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(cfg.MaxOpenConns).
			SetMaxIdleConns(cfg.MaxIdleConns)
		if err := gdb.Use(resolver); err != nil {
			return nil, errors.Wrap(err, "注册 MySQL 只读副本失败")
		}
		zap.S().Debugf("MySQL 已注册 %d 个只读副本", len(replicas))
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "获取 MySQL 连接池失败")
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "MySQL 连接测试失败")
	}
	return gdb, nil
}

// InitSQLite 打开单文件 sqlite 并建表，":memory:" 使用内存库
func InitSQLite(ctx context.Context, cfg *config.SQLiteConfig) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("SQLite 配置未设置")
	}
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, errors.Wrap(err, "创建 SQLite 目录失败")
		}
	}
	gdb, err := openSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := migrateGorm(gdb); err != nil {
		closeGorm(gdb)
		return nil, err
	}
	zap.S().Debug("SQLite 初始化完成...")
	return gdb, nil
}

// OpenSQLiteSource 以迁移源的方式打开已有的 sqlite 文件，不建表也不修改表结构
func OpenSQLiteSource(ctx context.Context, cfg *config.SQLiteConfig) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("SQLite 配置未设置")
	}
	// 文件不存在时 sqlite 会新建空库
	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, errors.Wrapf(err, "SQLite 源文件 %s 不可用", cfg.DBPath)
	}
	gdb, err := openSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := requireTable(gdb); err != nil {
		closeGorm(gdb)
		return nil, err
	}
	return gdb, nil
}

func openSQLite(ctx context.Context, dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, errors.Wrap(err, "打开 SQLite 失败")
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, errors.Wrap(err, "获取 SQLite 连接池失败")
	}
	// sqlite 单写者
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(err, "SQLite 连接测试失败")
	}
	return gdb, nil
}

func migrateGorm(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&model.PostRecord{}); err != nil {
		return errors.Wrap(err, "创建 post_history 表失败")
	}
	return nil
}

func requireTable(gdb *gorm.DB) error {
	if !gdb.Migrator().HasTable(&model.PostRecord{}) {
		return errors.New("源库中不存在 post_history 表")
	}
	return nil
}

func closeGorm(gdb *gorm.DB) {
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
