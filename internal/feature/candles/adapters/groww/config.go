package groww

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultBaseURL はGroww charting APIのNSE現物セグメントのエンドポイントです。
const DefaultBaseURL = "https://groww.in/v1/api/charting_service/v2/chart/delayed/exchange/NSE/segment/CASH"

// Config はGrowwアダプターの接続設定です。
type Config struct {
	BaseURL        string
	AttemptTimeout time.Duration // 1試行あたりのタイムアウト
	MaxAttempts    int           // リトライを含めた総試行回数
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// LoadConfig は環境変数からGrowwアダプターの設定を読み込みます。
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env ファイルが見つかりませんでした")
	}

	return Config{
		BaseURL:        getEnv("GROWW_BASE_URL", DefaultBaseURL),
		AttemptTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 5)) * time.Second,
		MaxAttempts:    getEnvInt("FETCH_RETRIES", 3),
		RetryBaseDelay: 250 * time.Millisecond,
		RetryMaxDelay:  time.Second,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}
