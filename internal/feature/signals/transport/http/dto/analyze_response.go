// Package dto はsignalsフィーチャーのHTTPレスポンス型を定義します。
package dto

import "candle_backend/internal/feature/signals/usecase"

// SignalAnalysisItem は1シグナルの検証結果です。時刻は市場タイムゾーンの
// "HH:MM:SS" で、イベントが発生していない場合は null になります。
type SignalAnalysisItem struct {
	Symbol    string   `json:"symbol"`
	Entry     float64  `json:"entry"`
	Target    float64  `json:"target"`
	Stoploss  float64  `json:"stoploss"`
	Qty       float64  `json:"qty"`
	Status    string   `json:"status"`
	EntryTime *string  `json:"entry_time"`
	ExitTime  *string  `json:"exit_time"`
	ExitLTP   *float64 `json:"exit_ltp"`
	PnL       *float64 `json:"pnl"`
}

// AnalyzeSignalsResponse は /api/analyze-signals のレスポンスボディです。
type AnalyzeSignalsResponse struct {
	Status         string                        `json:"status"`
	Count          int                           `json:"count"`
	Summary        usecase.Summary               `json:"summary"`
	ResponseTimeMs int64                         `json:"response_time_ms"`
	Data           map[string]SignalAnalysisItem `json:"data"`
}
