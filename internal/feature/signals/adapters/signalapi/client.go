// Package signalapi はシグナル配信APIからトレードシグナルを取得するアダプターです。
package signalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"candle_backend/internal/feature/signals/domain/entity"
	"candle_backend/internal/feature/signals/usecase"
)

// signalsResponse はシグナルAPIのレスポンスボディです。
type signalsResponse struct {
	Data []signalItem `json:"data"`
}

type signalItem struct {
	Symbol   string  `json:"symbol"`
	Entry    float64 `json:"entry"`
	Target   float64 `json:"target"`
	Stoploss float64 `json:"stoploss"`
	Qty      float64 `json:"qty"`
}

// SignalAPI はHTTP経由のSignalRepository実装です。
type SignalAPI struct {
	cfg    Config
	client *http.Client
}

// SignalAPIがSignalRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.SignalRepository = (*SignalAPI)(nil)

// New は指定された設定とHTTPクライアントでSignalAPIの新しいインスタンスを生成します。
func New(cfg Config, client *http.Client) *SignalAPI {
	return &SignalAPI{cfg: cfg, client: client}
}

// FetchSignals はシグナルAPIから当日のトレードシグナル一覧を取得します。
func (s *SignalAPI) FetchSignals(ctx context.Context) ([]entity.Signal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.SignalsURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signals http %d", res.StatusCode)
	}

	var body signalsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode signals response: %w", err)
	}

	signals := make([]entity.Signal, 0, len(body.Data))
	for _, it := range body.Data {
		if it.Symbol == "" {
			continue
		}
		signals = append(signals, entity.Signal{
			Symbol:   it.Symbol,
			Entry:    it.Entry,
			Target:   it.Target,
			Stoploss: it.Stoploss,
			Qty:      it.Qty,
		})
	}
	return signals, nil
}
