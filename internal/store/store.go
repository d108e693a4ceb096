package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"assetreport/internal/config"
	"assetreport/internal/dialect"
)

//go:embed schema.sql
var schemaFS embed.FS

// Store 数据库存储层，SQL 方言由 database.driver 决定
type Store struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// New 创建新的 Store 实例
func New(cfg config.DatabaseConfig) (*Store, error) {
	d, err := dialect.Get(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if d.Name() == "sqlite3" {
		// 确保 data 目录存在
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open(d.Name(), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if d.Name() == "sqlite3" {
		db.SetMaxOpenConns(1) // SQLite 建议单连接
		db.SetMaxIdleConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	store := &Store{db: db, dialect: d}

	if cfg.AutoMigrate && d.Name() == "sqlite3" {
		if err := store.initSchema(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	return store, nil
}

// NewWithDB 使用已有连接创建 Store（测试使用 sqlmock）
func NewWithDB(db *sql.DB, d dialect.Dialect) *Store {
	return &Store{db: db, dialect: d}
}

// initSchema 初始化 SQLite 数据库结构，其他数据库由 DBA 预先建表
func (s *Store) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}

	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB 获取原始数据库连接
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 当前 SQL 方言
func (s *Store) Dialect() dialect.Dialect {
	return s.dialect
}

// Exec 执行 SQL 语句
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// QueryRow 查询单行
func (s *Store) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, query, args...)
}

// Query 查询多行
func (s *Store) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, query, args...)
}
