package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradingagents/internal/adapters/config"
	noopTracker "tradingagents/internal/adapters/errors/noop"
	sentryTracker "tradingagents/internal/adapters/errors/sentry"
	"tradingagents/internal/graph"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

func main() {
	ticker := flag.String("ticker", "", "Ticker symbol to analyze (required)")
	date := flag.String("date", time.Now().UTC().Format("2006-01-02"), "Trade date, YYYY-MM-DD")
	offline := flag.Bool("offline", false, "Use cached data only, no live fetches")
	debateRounds := flag.Int("debate-rounds", 0, "Override max investment debate rounds")
	riskRounds := flag.Int("risk-rounds", 0, "Override max risk discussion rounds")
	flag.Parse()

	if *ticker == "" {
		fmt.Println("Error: --ticker flag is required")
		flag.Usage()
		os.Exit(1)
	}

	var opts []config.Option
	if *offline {
		opts = append(opts, config.WithOnlineTools(false))
	}
	if *debateRounds > 0 {
		opts = append(opts, config.WithMaxDebateRounds(*debateRounds))
	}
	if *riskRounds > 0 {
		opts = append(opts, config.WithMaxRiskDiscussRounds(*riskRounds))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get().With("component", "main")

	var tracker errors.Tracker = noopTracker.New()
	if cfg.ErrorTracking.Enabled && cfg.ErrorTracking.SentryDSN != "" {
		st, err := sentryTracker.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
		if err != nil {
			log.Warnw("Sentry init failed, error tracking disabled", "error", err)
		} else {
			tracker = st
		}
	}
	logger.SetErrorTracker(tracker)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer flushCancel()
		_ = tracker.Flush(flushCtx)
	}()

	g, err := graph.New(*cfg)
	if err != nil {
		log.Errorw("Pipeline construction failed", "error", err)
		os.Exit(1)
	}

	record, err := g.Propagate(ctx, *ticker, *date)
	if err != nil {
		log.Errorw("Run failed", "ticker", *ticker, "date", *date, "error", err)
		tracker.CaptureError(ctx, err, map[string]string{"ticker": *ticker, "date": *date})
		os.Exit(1)
	}

	dir, err := graph.SaveDecision(cfg.Paths.ResultsDir, record)
	if err != nil {
		log.Errorw("Failed to persist decision", "error", err)
		os.Exit(1)
	}

	log.Infow("Decision saved", "ticker", record.Ticker, "action", record.Action, "dir", dir)
	fmt.Printf("%s %s: %s\n", record.Ticker, record.TradeDate, record.Action)
}
