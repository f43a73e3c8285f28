package groww_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"candle_backend/internal/feature/candles/adapters/groww"
)

// testConfig はリトライ遅延を最小化したテスト用設定です。
func testConfig(baseURL string) groww.Config {
	return groww.Config{
		BaseURL:        baseURL,
		AttemptTimeout: 2 * time.Second,
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	}
}

func fetchWindow() (time.Time, time.Time) {
	start := time.Date(2025, 1, 6, 3, 30, 0, 0, time.UTC) // 09:00 IST
	return start, start.Add(6 * time.Minute)
}

func TestGrowwMarket_FetchCandles_Success(t *testing.T) {
	var gotPath, gotQuery string
	var gotAppID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAppID = r.Header.Get("x-app-id")
		w.Header().Set("Content-Type", "application/json")
		// 逆順と重複を含むレスポンスが正規化されることを確認する
		_, _ = w.Write([]byte(`{"candles":[
			[1736134380,101,103,100,102,1500],
			[1736134200,100,102,99,101,2000],
			[1736134200,100,102,99,101,2000]
		]}`))
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	candles, err := m.FetchCandles(context.Background(), "AXISBANK", start, end, 3)

	assert.NoError(t, err)
	assert.Len(t, candles, 2)
	assert.True(t, candles[0].Time.Before(candles[1].Time))
	assert.Equal(t, 100.0, candles[0].Open)
	assert.Equal(t, int64(2000), candles[0].Volume)

	assert.Equal(t, "/AXISBANK", gotPath)
	assert.Contains(t, gotQuery, "intervalInMinutes=3")
	assert.Contains(t, gotQuery, "startTimeInMillis=")
	assert.Equal(t, "growwWeb", gotAppID)
}

// 5xxはリトライされ、成功に転じたら結果を返します。
func TestGrowwMarket_FetchCandles_RetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"candles":[[1736134200,100,102,99,101,2000]]}`))
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	candles, err := m.FetchCandles(context.Background(), "INFY", start, end, 3)

	assert.NoError(t, err)
	assert.Len(t, candles, 1)
	assert.Equal(t, int32(3), calls.Load())
}

// 4xxは即座に打ち切り、リトライしません。
func TestGrowwMarket_FetchCandles_ClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	_, err := m.FetchCandles(context.Background(), "UNKNOWN", start, end, 3)

	var fe *groww.FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, groww.KindHTTP, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, int32(1), calls.Load())
}

// 不正なタプルは捨て、残りの有効なローソク足だけを返します。
func TestGrowwMarket_FetchCandles_DropsInvalidCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 2本目はフィールド不足、3本目はlow>highで不変条件違反
		_, _ = w.Write([]byte(`{"candles":[
			[1736134200,100,102,99,101,2000],
			[1736134380,101,103],
			[1736134560,101,99,103,101,500]
		]}`))
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	candles, err := m.FetchCandles(context.Background(), "TCS", start, end, 3)

	assert.NoError(t, err)
	assert.Len(t, candles, 1)
}

// 有効なローソク足が1本もない場合はemptyエラーになります（リトライなし）。
func TestGrowwMarket_FetchCandles_Empty(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"candles":[]}`))
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	_, err := m.FetchCandles(context.Background(), "RELIANCE", start, end, 3)

	var fe *groww.FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, groww.KindEmpty, fe.Kind)
	assert.Equal(t, "empty", fe.FailureKind())
	assert.Equal(t, int32(1), calls.Load())
}

// 不正なJSONはparse_errorとして即座に打ち切ります。
func TestGrowwMarket_FetchCandles_ParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	m := groww.New(testConfig(srv.URL), srv.Client(), nil)

	start, end := fetchWindow()
	_, err := m.FetchCandles(context.Background(), "HDFCBANK", start, end, 3)

	var fe *groww.FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, groww.KindParse, fe.Kind)
}

// 試行ごとのタイムアウトはリトライ対象で、全試行を使い切ります。
func TestGrowwMarket_FetchCandles_Timeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AttemptTimeout = 30 * time.Millisecond
	m := groww.New(cfg, srv.Client(), nil)

	start, end := fetchWindow()
	_, err := m.FetchCandles(context.Background(), "SBIN", start, end, 3)

	var fe *groww.FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, groww.KindTimeout, fe.Kind)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchError_Retryable(t *testing.T) {
	testCases := []struct {
		name      string
		err       *groww.FetchError
		retryable bool
	}{
		{"timeout", &groww.FetchError{Kind: groww.KindTimeout}, true},
		{"http 500", &groww.FetchError{Kind: groww.KindHTTP, Status: 500}, true},
		{"http 503", &groww.FetchError{Kind: groww.KindHTTP, Status: 503}, true},
		{"connection error without status", &groww.FetchError{Kind: groww.KindHTTP, Err: errors.New("refused")}, true},
		{"http 404", &groww.FetchError{Kind: groww.KindHTTP, Status: 404}, false},
		{"http 429", &groww.FetchError{Kind: groww.KindHTTP, Status: 429}, false},
		{"parse error", &groww.FetchError{Kind: groww.KindParse}, false},
		{"empty", &groww.FetchError{Kind: groww.KindEmpty}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.retryable, tc.err.Retryable())
		})
	}
}
