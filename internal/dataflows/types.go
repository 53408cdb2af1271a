package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tool names routed by the Data Source Router.
const (
	ToolStockData           = "stock_data"
	ToolIndicators          = "stock_indicators"
	ToolCompanyNews         = "company_news"
	ToolInsiderTransactions = "insider_transactions"
	ToolFundamentals        = "fundamentals"
)

// Source identifies where a ToolResult was produced.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// Args identify the data a tool call targets.
type Args struct {
	Ticker       string `json:"ticker"`
	Date         string `json:"date"` // trade date, YYYY-MM-DD
	LookbackDays int    `json:"lookback_days,omitempty"`
}

// DefaultLookbackDays bounds how far back bar/news windows reach when the
// caller does not say.
const DefaultLookbackDays = 30

// Lookback returns the effective lookback window.
func (a Args) Lookback() int {
	if a.LookbackDays > 0 {
		return a.LookbackDays
	}
	return DefaultLookbackDays
}

// Bar is one OHLCV candle.
type Bar struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume decimal.Decimal `json:"volume"`
}

// ToolResult is the response contract shared by the live and cache paths.
// Calling agents are mode-agnostic: both paths return this exact shape.
type ToolResult struct {
	Tool      string    `json:"tool"`
	Ticker    string    `json:"ticker"`
	Date      string    `json:"date"`
	Source    Source    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
	Text      string    `json:"text,omitempty"`
	Bars      []Bar     `json:"bars,omitempty"`
}
