// Package dto はcandlesフィーチャーのHTTPレスポンス型を定義します。
package dto

import (
	"encoding/json"
	"time"

	"candle_backend/internal/feature/candles/domain/entity"
)

// CandlePoint は1本のローソク足のワイヤ表現です。JSONでは
// [timestamp, open, high, low, close, volume] の配列にエンコードされます。
// timestamp はUTC秒です。
type CandlePoint struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// MarshalJSON はローソク足を6要素の配列として出力します。
func (p CandlePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Time.Unix(), p.Open, p.High, p.Low, p.Close, p.Volume})
}

// UnmarshalJSON は6要素の配列からローソク足を復元します。
func (p *CandlePoint) UnmarshalJSON(b []byte) error {
	var tuple [6]float64
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	p.Time = time.Unix(int64(tuple[0]), 0).UTC()
	p.Open = tuple[1]
	p.High = tuple[2]
	p.Low = tuple[3]
	p.Close = tuple[4]
	p.Volume = int64(tuple[5])
	return nil
}

// NewCandlePoints はドメインエンティティの系列をワイヤ表現に変換します。
func NewCandlePoints(cs []entity.Candle) []CandlePoint {
	out := make([]CandlePoint, 0, len(cs))
	for _, c := range cs {
		out = append(out, CandlePoint{
			Time:   c.Time,
			Open:   c.Open,
			High:   c.High,
			Low:    c.Low,
			Close:  c.Close,
			Volume: c.Volume,
		})
	}
	return out
}

// LiveCandlesResponse は /api/live-candles のレスポンスボディです。
// 取得に失敗した銘柄は data には含めず、failed に理由付きで列挙します
// （全銘柄が data と failed のどちらかにちょうど1回現れます）。
type LiveCandlesResponse struct {
	Mode            string                   `json:"mode"`
	BatchNo         int                      `json:"batch_no"`
	TotalBatches    int                      `json:"total_batches"`
	FetchedDate     string                   `json:"fetched_date"`
	EffectiveDate   string                   `json:"effective_date"`
	IsFallback      bool                     `json:"is_fallback"`
	IntervalMinutes int                      `json:"interval_minutes"`
	StartTime       string                   `json:"start_time"`
	EndTime         string                   `json:"end_time"`
	Count           int                      `json:"count"`
	Data            map[string][]CandlePoint `json:"data"`
	Failed          map[string]string        `json:"failed"`
}

// ErrorResponse は構造化エラーのレスポンスボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}
