package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// LiveFetcher produces a ToolResult from a live data source.
type LiveFetcher interface {
	Fetch(ctx context.Context, tool string, args Args) (*ToolResult, error)
}

// httpStatusError lets the retrier classify upstream failures by status code.
type httpStatusError struct {
	code int
	body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("finnhub API error (%d): %s", e.code, e.body)
}

func (e *httpStatusError) StatusCode() int { return e.code }

// FinnhubFetcher implements LiveFetcher against the Finnhub REST API.
type FinnhubFetcher struct {
	baseURL string
	token   string
	client  *http.Client
	log     *logger.Logger
}

var _ LiveFetcher = (*FinnhubFetcher)(nil)

// NewFinnhubFetcher creates a live fetcher. The token requirement is not
// validated here; an invalid token surfaces at call time from the API.
func NewFinnhubFetcher(token string, timeout time.Duration) *FinnhubFetcher {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &FinnhubFetcher{
		baseURL: finnhubBaseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     logger.Get().With("component", "finnhub"),
	}
}

// Fetch dispatches to the endpoint backing the named tool.
func (f *FinnhubFetcher) Fetch(ctx context.Context, tool string, args Args) (*ToolResult, error) {
	switch tool {
	case ToolStockData:
		return f.candles(ctx, args)
	case ToolCompanyNews:
		return f.companyNews(ctx, args)
	case ToolInsiderTransactions:
		return f.insiderTransactions(ctx, args)
	case ToolFundamentals:
		return f.fundamentals(ctx, args)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown live tool %q", tool)
	}
}

func (f *FinnhubFetcher) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	query.Set("token", f.token)

	req, err := http.NewRequestWithContext(ctx, "GET", f.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "create HTTP request")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send finnhub request")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read finnhub response")
	}

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{code: resp.StatusCode, body: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "unmarshal finnhub response")
	}
	return nil
}

func (f *FinnhubFetcher) window(args Args) (time.Time, time.Time, error) {
	to, err := time.Parse("2006-01-02", args.Date)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrapf(errors.ErrInvalidInput, "invalid trade date %q", args.Date)
	}
	from := to.AddDate(0, 0, -args.Lookback())
	return from, to, nil
}

func (f *FinnhubFetcher) candles(ctx context.Context, args Args) (*ToolResult, error) {
	from, to, err := f.window(args)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Status  string    `json:"s"`
		Times   []int64   `json:"t"`
		Opens   []float64 `json:"o"`
		Highs   []float64 `json:"h"`
		Lows    []float64 `json:"l"`
		Closes  []float64 `json:"c"`
		Volumes []float64 `json:"v"`
	}

	query := url.Values{}
	query.Set("symbol", args.Ticker)
	query.Set("resolution", "D")
	query.Set("from", fmt.Sprintf("%d", from.Unix()))
	query.Set("to", fmt.Sprintf("%d", to.Unix()))

	if err := f.get(ctx, "/stock/candle", query, &raw); err != nil {
		return nil, err
	}
	if raw.Status != "ok" || len(raw.Times) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no candles for %s up to %s", args.Ticker, args.Date)
	}
	// The OHLCV arrays are parallel to the timestamps; a ragged payload
	// means the upstream response is broken, not merely empty.
	n := len(raw.Times)
	if len(raw.Opens) != n || len(raw.Highs) != n || len(raw.Lows) != n ||
		len(raw.Closes) != n || len(raw.Volumes) != n {
		return nil, errors.Wrapf(errors.ErrExternal,
			"malformed candle payload for %s: %d timestamps, %d/%d/%d/%d/%d ohlcv",
			args.Ticker, n, len(raw.Opens), len(raw.Highs), len(raw.Lows), len(raw.Closes), len(raw.Volumes))
	}

	bars := make([]Bar, 0, len(raw.Times))
	for i := range raw.Times {
		bars = append(bars, Bar{
			Date:   time.Unix(raw.Times[i], 0).UTC().Format("2006-01-02"),
			Open:   decimal.NewFromFloat(raw.Opens[i]),
			High:   decimal.NewFromFloat(raw.Highs[i]),
			Low:    decimal.NewFromFloat(raw.Lows[i]),
			Close:  decimal.NewFromFloat(raw.Closes[i]),
			Volume: decimal.NewFromFloat(raw.Volumes[i]),
		})
	}

	f.log.Debugw("fetched candles", "ticker", args.Ticker, "bars", len(bars))

	return &ToolResult{
		Tool:      ToolStockData,
		Ticker:    args.Ticker,
		Date:      args.Date,
		Source:    SourceLive,
		FetchedAt: time.Now().UTC(),
		Bars:      bars,
	}, nil
}

func (f *FinnhubFetcher) companyNews(ctx context.Context, args Args) (*ToolResult, error) {
	from, to, err := f.window(args)
	if err != nil {
		return nil, err
	}

	var items []struct {
		Datetime int64  `json:"datetime"`
		Headline string `json:"headline"`
		Summary  string `json:"summary"`
		NewsSrc  string `json:"source"`
	}

	query := url.Values{}
	query.Set("symbol", args.Ticker)
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))

	if err := f.get(ctx, "/company-news", query, &items); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "[%s] %s (%s)\n%s\n\n",
			time.Unix(item.Datetime, 0).UTC().Format("2006-01-02"),
			item.Headline, item.NewsSrc, item.Summary)
	}

	return &ToolResult{
		Tool:      ToolCompanyNews,
		Ticker:    args.Ticker,
		Date:      args.Date,
		Source:    SourceLive,
		FetchedAt: time.Now().UTC(),
		Text:      sb.String(),
	}, nil
}

func (f *FinnhubFetcher) insiderTransactions(ctx context.Context, args Args) (*ToolResult, error) {
	from, to, err := f.window(args)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Data []struct {
			Name            string  `json:"name"`
			Share           int64   `json:"share"`
			Change          int64   `json:"change"`
			TransactionDate string  `json:"transactionDate"`
			TransactionCode string  `json:"transactionCode"`
			Price           float64 `json:"transactionPrice"`
		} `json:"data"`
	}

	query := url.Values{}
	query.Set("symbol", args.Ticker)
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))

	if err := f.get(ctx, "/stock/insider-transactions", query, &raw); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, tx := range raw.Data {
		fmt.Fprintf(&sb, "%s: %s %+d shares (code %s, price %.2f, holding %d)\n",
			tx.TransactionDate, tx.Name, tx.Change, tx.TransactionCode, tx.Price, tx.Share)
	}

	return &ToolResult{
		Tool:      ToolInsiderTransactions,
		Ticker:    args.Ticker,
		Date:      args.Date,
		Source:    SourceLive,
		FetchedAt: time.Now().UTC(),
		Text:      sb.String(),
	}, nil
}

func (f *FinnhubFetcher) fundamentals(ctx context.Context, args Args) (*ToolResult, error) {
	var raw struct {
		Metric map[string]interface{} `json:"metric"`
	}

	query := url.Values{}
	query.Set("symbol", args.Ticker)
	query.Set("metric", "all")

	if err := f.get(ctx, "/stock/metric", query, &raw); err != nil {
		return nil, err
	}
	if len(raw.Metric) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no fundamentals for %s", args.Ticker)
	}

	// Keep the headline metrics an analyst actually reads.
	keys := []string{
		"peBasicExclExtraTTM", "pbAnnual", "psTTM", "epsBasicExclExtraItemsTTM",
		"revenueGrowthTTMYoy", "grossMarginTTM", "netProfitMarginTTM",
		"roeTTM", "totalDebt/totalEquityAnnual", "currentRatioAnnual",
		"52WeekHigh", "52WeekLow", "beta", "marketCapitalization",
	}

	var sb strings.Builder
	for _, key := range keys {
		if val, ok := raw.Metric[key]; ok {
			fmt.Fprintf(&sb, "%s: %v\n", key, val)
		}
	}

	return &ToolResult{
		Tool:      ToolFundamentals,
		Ticker:    args.Ticker,
		Date:      args.Date,
		Source:    SourceLive,
		FetchedAt: time.Now().UTC(),
		Text:      sb.String(),
	}, nil
}
