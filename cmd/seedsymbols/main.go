package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	symbollistadapters "candle_backend/internal/feature/symbollist/adapters"
	platformdb "candle_backend/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}

	path := os.Getenv("COMPANY_FILE")
	if path == "" {
		path = "companies_list.json"
	}

	db := platformdb.OpenDB()
	fileRepo := symbollistadapters.NewSymbolFileRepository(path)
	dbRepo := symbollistadapters.NewSymbolRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	symbols, err := fileRepo.ListActive(ctx)
	if err != nil {
		log.Fatal("failed to read company file: ", err)
	}
	if err := dbRepo.UpsertBatch(ctx, symbols); err != nil {
		log.Fatal("failed to upsert symbols: ", err)
	}
	log.Printf("seeded %d symbols from %s", len(symbols), path)
}
