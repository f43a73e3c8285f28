package main

import (
	"context"
	"log"
	"os"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"candle_backend/internal/app/di"
	"candle_backend/internal/app/router"
	candleshandler "candle_backend/internal/feature/candles/transport/handler"
	"candle_backend/internal/feature/signals/adapters/signalapi"
	signalshandler "candle_backend/internal/feature/signals/transport/handler"
	signalsusecase "candle_backend/internal/feature/signals/usecase"
	symbollistadapters "candle_backend/internal/feature/symbollist/adapters"
	symbollisthandler "candle_backend/internal/feature/symbollist/transport/handler"
	symbollistusecase "candle_backend/internal/feature/symbollist/usecase"
	"candle_backend/internal/platform/cache"
	platformdb "candle_backend/internal/platform/db"
	platformhttp "candle_backend/internal/platform/http"
	platformredis "candle_backend/internal/platform/redis"
)

func main() {
	settings, err := di.LoadEngineSettings()
	if err != nil {
		log.Fatal(err)
	}

	// Redis
	var rdb *redisv9.Client
	if tmp, err := platformredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without cache.")
		rdb = nil
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// Repository
	// COMPANY_FILEが指定されていればDBを起動せずファイルから銘柄を読みます。
	var symbolRepo symbollistusecase.SymbolRepository
	if path := os.Getenv("COMPANY_FILE"); path != "" {
		symbolRepo = symbollistadapters.NewSymbolFileRepository(path)
	} else {
		db := platformdb.OpenDB()
		symbolRepo = symbollistadapters.NewSymbolRepository(db)
	}

	// 銘柄ユニバースは起動時に1度だけ読み込みます
	universe, err := symbolRepo.ListActiveCodes(context.Background())
	if err != nil {
		log.Fatal("failed to load symbol universe: ", err)
	}
	if len(universe) == 0 {
		log.Println("[WARN] symbol universe is empty. /api/live-candles will return no data.")
	}

	// Usecase
	market := di.NewMarket(settings.MaxWorkers)
	liveCandlesUC, err := di.NewLiveCandles(market, universe, settings)
	if err != nil {
		log.Fatal(err)
	}
	symbolUC := symbollistusecase.NewSymbolUsecase(symbolRepo)

	signalCfg := signalapi.LoadConfig()
	signalRepo := signalapi.New(signalCfg, platformhttp.NewHTTPClient(signalCfg.Timeout, 2))
	analyzeUC := signalsusecase.NewAnalyzeUsecase(signalRepo, market, signalsusecase.Config{
		IntervalMinutes: settings.IntervalMinutes,
		MaxWorkers:      settings.MaxWorkers,
		RequestDeadline: settings.RequestDeadline,
		Now:             func() time.Time { return time.Now().In(di.MarketLocation()) },
	})

	// Redisキャッシュでラップ
	var provider candleshandler.LiveCandlesUsecase = liveCandlesUC
	if rdb != nil {
		provider = cache.NewCachingLiveCandles(rdb, settings.IntervalMinutes, liveCandlesUC, "live")
	}

	// Handler
	candlesH := candleshandler.NewCandlesHandler(provider, settings.BatchNo, di.MarketLocation())
	symbolH := symbollisthandler.NewSymbolHandler(symbolUC)
	signalsH := signalshandler.NewSignalHandler(analyzeUC, di.MarketLocation())

	// ルータ生成
	r := router.NewRouter(candlesH, symbolH, signalsH)

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
