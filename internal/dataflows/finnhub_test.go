package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradingagents/pkg/errors"
)

func finnhubAgainst(t *testing.T, handler http.HandlerFunc) *FinnhubFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fetcher := NewFinnhubFetcher("test-token", time.Second)
	fetcher.baseURL = srv.URL
	return fetcher
}

func TestFinnhubCandles_ParsesBars(t *testing.T) {
	fetcher := finnhubAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"ok","t":[1735776000,1735862400],` +
			`"o":[100,101],"h":[102,103],"l":[99,100],"c":[101,102],"v":[1000,2000]}`))
	})

	result, err := fetcher.Fetch(context.Background(), ToolStockData, Args{Ticker: "AAPL", Date: "2026-08-01"})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(result.Bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(result.Bars))
	}
	if result.Bars[0].Close.String() != "101" {
		t.Errorf("close = %s", result.Bars[0].Close)
	}
}

func TestFinnhubCandles_RaggedPayloadIsError(t *testing.T) {
	fetcher := finnhubAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"ok","t":[1735776000,1735862400],` +
			`"o":[100],"h":[102,103],"l":[99,100],"c":[101,102],"v":[1000,2000]}`))
	})

	_, err := fetcher.Fetch(context.Background(), ToolStockData, Args{Ticker: "AAPL", Date: "2026-08-01"})
	if !errors.Is(err, errors.ErrExternal) {
		t.Errorf("ragged payload: got %v, want ErrExternal", err)
	}
}

func TestFinnhubCandles_NoDataIsNotFound(t *testing.T) {
	fetcher := finnhubAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"s":"no_data"}`))
	})

	_, err := fetcher.Fetch(context.Background(), ToolStockData, Args{Ticker: "ZZZZ", Date: "2026-08-01"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
