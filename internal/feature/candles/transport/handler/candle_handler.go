// Package handler はcandlesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"candle_backend/internal/feature/candles/domain/calendar"
	"candle_backend/internal/feature/candles/domain/window"
	"candle_backend/internal/feature/candles/transport/http/dto"
	"candle_backend/internal/feature/candles/usecase"
)

// LiveCandlesUsecase はローソク足バッチ取得のユースケースインターフェースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LiveCandlesUsecase interface {
	GetLiveCandles(ctx context.Context, mode window.Mode, requested time.Time, batchNo int) (*usecase.Result, error)
}

// CandlesHandler はローソク足データのHTTPリクエストを処理します。
type CandlesHandler struct {
	uc             LiveCandlesUsecase
	defaultBatchNo int
	loc            *time.Location
}

// NewCandlesHandler は指定されたusecaseでCandlesHandlerの新しいインスタンスを生成します。
// defaultBatchNo は batch クエリ未指定時に使うバッチ番号、loc は市場のタイムゾーンです。
func NewCandlesHandler(uc LiveCandlesUsecase, defaultBatchNo int, loc *time.Location) *CandlesHandler {
	return &CandlesHandler{uc: uc, defaultBatchNo: defaultBatchNo, loc: loc}
}

// GetLiveCandlesHandler は選択バッチの全銘柄のローソク足をJSONで返します。
//
// エンドポイント例:
// GET /api/live-candles?latest=true&date=2025-01-01&batch=1
func (h *CandlesHandler) GetLiveCandlesHandler(c *gin.Context) {
	mode := window.ModeFull
	if c.DefaultQuery("latest", "false") == "true" {
		mode = window.ModeLatest
	}

	var requested time.Time
	if s := c.Query("date"); s != "" {
		d, err := time.ParseInLocation(calendar.DateLayout, s, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "date must be YYYY-MM-DD"})
			return
		}
		requested = d
	}

	batchNo := h.defaultBatchNo
	if s := c.Query("batch"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "batch must be an integer"})
			return
		}
		batchNo = n
	}

	res, err := h.uc.GetLiveCandles(c.Request.Context(), mode, requested, batchNo)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidBatch), errors.Is(err, window.ErrInvalidWindow):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, calendar.ErrResolutionExceeded):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	// レスポンスをフォーマット
	data := make(map[string][]dto.CandlePoint, len(res.Data))
	for sym, cs := range res.Data {
		data[sym] = dto.NewCandlePoints(cs)
	}

	c.JSON(http.StatusOK, dto.LiveCandlesResponse{
		Mode:            string(res.Mode),
		BatchNo:         res.BatchNo,
		TotalBatches:    res.TotalBatches,
		FetchedDate:     res.FetchedDate.Format(calendar.DateLayout),
		EffectiveDate:   res.EffectiveDate.Format(calendar.DateLayout),
		IsFallback:      res.IsFallback,
		IntervalMinutes: res.IntervalMinutes,
		StartTime:       res.Start.Format("15:04:05"),
		EndTime:         res.End.Format("15:04:05"),
		Count:           res.Count(),
		Data:            data,
		Failed:          res.Failed,
	})
}
