package db

import (
	"path/filepath"
	"testing"

	"candle_backend/internal/feature/symbollist/domain/entity"
)

// TestOpenDB_SQLiteDefault はDB_DRIVER未指定時にSQLiteへ接続し、
// 銘柄マスターのマイグレーションが行われることを検証します。
func TestOpenDB_SQLiteDefault(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))

	db := OpenDB()

	if !db.Migrator().HasTable(&entity.Symbol{}) {
		t.Error("expected symbols table to be migrated")
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close database: %v", err)
	}
}
