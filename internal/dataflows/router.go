package dataflows

import (
	"context"
	"fmt"
	"time"

	"tradingagents/internal/adapters/config"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Router dispatches tool requests to a live fetcher or the file cache
// depending on the run's online_tools flag. Both paths return the identical
// ToolResult contract, so call sites never inspect the mode.
type Router struct {
	online  bool
	cache   *FileCache
	fetcher LiveFetcher
	retry   *retrier
	log     *logger.Logger
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithLiveFetcher replaces the production fetcher (used by tests).
func WithLiveFetcher(fetcher LiveFetcher) RouterOption {
	return func(r *Router) { r.fetcher = fetcher }
}

// WithRetryConfig replaces the backoff configuration.
func WithRetryConfig(cfg RetryConfig) RouterOption {
	return func(r *Router) { r.retry = newRetrier(cfg) }
}

// NewRouter creates a router for one run's configuration.
func NewRouter(cfg config.Config, opts ...RouterOption) *Router {
	r := &Router{
		online:  cfg.Tools.Online,
		cache:   NewFileCache(cfg.Paths.DataCacheDir),
		fetcher: NewFinnhubFetcher(cfg.Keys.Finnhub, 30*time.Second),
		retry:   newRetrier(DefaultRetryConfig()),
		log:     logger.Get().With("component", "dataflow_router", "online", cfg.Tools.Online),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch resolves a tool request. Cache misses in offline mode surface as
// ErrDataUnavailable, never as an empty success; exhausted live retries
// surface as ErrDataUnavailable carrying the root cause.
func (r *Router) Fetch(ctx context.Context, tool string, args Args) (*ToolResult, error) {
	if args.Ticker == "" || args.Date == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker and date are required")
	}

	// The indicators tool is derived from stock data through the same
	// dispatch, so it inherits the current mode transparently.
	if tool == ToolIndicators {
		return r.fetchIndicators(ctx, args)
	}

	if !r.online {
		result, err := r.cache.Read(tool, args)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return nil, errors.Wrapf(errors.ErrDataUnavailable,
					"online tools disabled and %s has no cached data for %s on %s", tool, args.Ticker, args.Date)
			}
			return nil, err
		}
		r.log.Debugw("cache hit", "tool", tool, "ticker", args.Ticker, "date", args.Date)
		return result, nil
	}

	var result *ToolResult
	err := r.retry.Do(ctx, func() error {
		var fetchErr error
		result, fetchErr = r.fetcher.Fetch(ctx, tool, args)
		return fetchErr
	})
	if err != nil {
		// Cancellation and bad input are not data-availability problems:
		// pass them through so callers can classify the root cause.
		if ctx.Err() != nil || errors.Is(err, errors.ErrInvalidInput) {
			return nil, errors.Wrapf(err, "live fetch of %s for %s aborted", tool, args.Ticker)
		}
		return nil, fmt.Errorf("live fetch of %s for %s failed: %w: %w",
			tool, args.Ticker, errors.ErrDataUnavailable, err)
	}

	// Write-back so later offline runs can replay this result.
	if cacheErr := r.cache.Write(result); cacheErr != nil {
		r.log.Warnw("cache write-back failed", "tool", tool, "error", cacheErr)
	}

	return result, nil
}

func (r *Router) fetchIndicators(ctx context.Context, args Args) (*ToolResult, error) {
	// Indicators need a longer warm-up window than the default bar lookback.
	barArgs := args
	if barArgs.Lookback() < 3*minIndicatorBars {
		barArgs.LookbackDays = 3 * minIndicatorBars
	}

	base, err := r.Fetch(ctx, ToolStockData, barArgs)
	if err != nil {
		return nil, err
	}

	report, err := IndicatorReport(args.Ticker, base.Bars)
	if err != nil {
		return nil, err
	}

	return &ToolResult{
		Tool:      ToolIndicators,
		Ticker:    args.Ticker,
		Date:      args.Date,
		Source:    base.Source,
		FetchedAt: time.Now().UTC(),
		Text:      report,
	}, nil
}
