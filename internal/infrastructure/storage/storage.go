package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"nutrition-planner/internal/pkg/common"

	"go.uber.org/zap"
)

// Store SQLite 持久層
// 病患、食譜目錄、疾病規則與一週計畫都存在單一資料庫檔案
type Store struct {
	db *sql.DB
}

// New 開啟資料庫並初始化綱要
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	common.LogInfo("資料庫已開啟",
		zap.String("path", dbPath),
	)
	return store, nil
}

// Close 關閉資料庫
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping 檢查資料庫連線，就緒探針用
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS patients (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        profile TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS recipes (
        id TEXT PRIMARY KEY,
        external_id TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL,
        doc TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS disease_rules (
        name TEXT PRIMARY KEY,
        prohibited_tags TEXT NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS weekly_plans (
        id TEXT PRIMARY KEY,
        patient_id TEXT NOT NULL,
        week_start TEXT NOT NULL,
        strategy TEXT NOT NULL,
        doc TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_recipes_external_id ON recipes(external_id);
    CREATE INDEX IF NOT EXISTS idx_plans_patient ON weekly_plans(patient_id);
    CREATE INDEX IF NOT EXISTS idx_plans_week ON weekly_plans(patient_id, week_start);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
