// Package router はHTTPルーティングを定義します。
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	candleshandler "candle_backend/internal/feature/candles/transport/handler"
	signalshandler "candle_backend/internal/feature/signals/transport/handler"
	symbollisthandler "candle_backend/internal/feature/symbollist/transport/handler"
	platformhandler "candle_backend/internal/platform/http/handler"
)

// NewRouter はすべてのエンドポイントを登録したginエンジンを生成します。
// /api 配下はブラウザのチャート画面から直接叩かれるためCORSを許可します。
func NewRouter(candles *candleshandler.CandlesHandler, symbols *symbollisthandler.SymbolHandler,
	signals *signalshandler.SignalHandler) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	{
		api.GET("/symbols", symbols.List)
		api.GET("/live-candles", candles.GetLiveCandlesHandler)
		api.GET("/analyze-signals", signals.Analyze)
	}

	return r
}
