// Package handler はsignalsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"candle_backend/internal/feature/signals/transport/http/dto"
	"candle_backend/internal/feature/signals/usecase"
)

// AnalyzeUsecase はシグナル検証のユースケースインターフェースです。
type AnalyzeUsecase interface {
	AnalyzeAll(ctx context.Context) (*usecase.Result, error)
}

// SignalHandler はシグナル検証のHTTPリクエストを処理します。
type SignalHandler struct {
	uc  AnalyzeUsecase
	loc *time.Location
}

// NewSignalHandler は新しい SignalHandler を作成します。
func NewSignalHandler(uc AnalyzeUsecase, loc *time.Location) *SignalHandler {
	return &SignalHandler{uc: uc, loc: loc}
}

// Analyze は当日の全シグナルを直近のローソク足に対して検証し、
// 銘柄ごとの結果とサマリーをJSONで返します。
func (h *SignalHandler) Analyze(c *gin.Context) {
	res, err := h.uc.AnalyzeAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	data := make(map[string]dto.SignalAnalysisItem, len(res.Data))
	for sym, out := range res.Data {
		data[sym] = dto.SignalAnalysisItem{
			Symbol:    out.Signal.Symbol,
			Entry:     out.Signal.Entry,
			Target:    out.Signal.Target,
			Stoploss:  out.Signal.Stoploss,
			Qty:       out.Signal.Qty,
			Status:    string(out.Analysis.Status),
			EntryTime: h.clock(out.Analysis.EntryTime),
			ExitTime:  h.clock(out.Analysis.ExitTime),
			ExitLTP:   out.Analysis.ExitLTP,
			PnL:       out.Analysis.PnL,
		}
	}

	c.JSON(http.StatusOK, dto.AnalyzeSignalsResponse{
		Status:         "ok",
		Count:          len(data),
		Summary:        res.Summary,
		ResponseTimeMs: res.Elapsed.Milliseconds(),
		Data:           data,
	})
}

// clock は時刻を市場タイムゾーンの "HH:MM:SS" に変換します。
func (h *SignalHandler) clock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.In(h.loc).Format("15:04:05")
	return &s
}
