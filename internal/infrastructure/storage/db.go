// Package storage 基于 SQLite 的本地持久化（语料片段、流水线轨迹）
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ontariodoctor/backend/internal/infrastructure/config"
	"github.com/ontariodoctor/backend/internal/infrastructure/log"
	_ "modernc.org/sqlite"
)

// schema 建表语句，按顺序执行
var schema = []string{
	`CREATE TABLE IF NOT EXISTS corpus_chunks (
		doc_id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		source TEXT NOT NULL,
		section TEXT NOT NULL,
		chunk_id INTEGER NOT NULL,
		tenant TEXT NOT NULL,
		lang TEXT NOT NULL,
		seq INTEGER NOT NULL,
		indexed_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_corpus_chunks_partition ON corpus_chunks(tenant, lang);`,
	`CREATE TABLE IF NOT EXISTS triage_traces (
		trace_id TEXT PRIMARY KEY,
		triage TEXT NOT NULL,
		red_flags TEXT NOT NULL,
		retrieved_count INTEGER NOT NULL,
		citation_count INTEGER NOT NULL,
		answer_length INTEGER NOT NULL,
		age INTEGER,
		symptoms TEXT NOT NULL,
		query_terms TEXT NOT NULL,
		stages TEXT NOT NULL,
		latency_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_triage_traces_created ON triage_traces(created_at);`,
}

// OpenDB 打开数据库并执行建表
func OpenDB(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL 允许检索读取与入库写入并发
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// ProvideDB 为 wire 提供数据库连接，cleanup 时关闭
func ProvideDB(cfg *config.DatabaseConfig) (*sql.DB, func(), error) {
	dbPath := cfg.ResolveDatabasePath()
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, nil, err
	}

	log.NewModuleLogger("storage", "db").Info("Database opened", "path", dbPath)

	cleanup := func() {
		_ = db.Close()
	}
	return db, cleanup, nil
}
