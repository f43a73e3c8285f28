// Package dto はGroww charting APIのレスポンス型を定義します。
package dto

import "encoding/json"

// ChartResponse はチャートエンドポイントのトップレベルレスポンスです。
// candles の各要素は [timestamp, open, high, low, close, volume] の配列で、
// timestamp はUTC秒です。
type ChartResponse struct {
	Candles [][]json.Number `json:"candles"`
}
