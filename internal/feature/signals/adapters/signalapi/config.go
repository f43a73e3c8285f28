package signalapi

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config はシグナルAPIクライアントの設定です。
type Config struct {
	SignalsURL string
	Timeout    time.Duration
}

// LoadConfig は環境変数からシグナルAPIの設定を読み込みます。
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env ファイルが見つかりませんでした")
	}

	return Config{
		SignalsURL: os.Getenv("SIGNALS_URL"),
		Timeout:    20 * time.Second,
	}
}
