// Package db はGORMによるデータベース接続と初期マイグレーションを提供します。
package db

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"candle_backend/internal/feature/symbollist/domain/entity"
)

// OpenDB は銘柄マスター用のデータベースを開きます。
// DB_DRIVER=postgres の場合はPostgreSQLに、それ以外はSQLiteファイル
// （DB_PATH、デフォルト candle_backend.db）に接続します。
func OpenDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch os.Getenv("DB_DRIVER") {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"),
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	default:
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "candle_backend.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// マイグレーション（銘柄マスター）
	if err := db.AutoMigrate(&entity.Symbol{}); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	return db
}
