package agents

import (
	"context"
	"fmt"
	"strings"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/dataflows"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Analyst is a tool-augmented agent that turns fetched data into a report.
type Analyst struct {
	agent  *Agent
	tools  []string
	router *dataflows.Router
	log    *logger.Logger
}

// NewAnalyst creates an analyst that consumes the named tools via the router.
func NewAnalyst(role Role, system string, tools []string, client ai.ChatClient, router *dataflows.Router) *Analyst {
	return &Analyst{
		agent:  New(role, system, client),
		tools:  tools,
		router: router,
		log:    logger.Get().With("component", "analyst", "role", string(role)),
	}
}

// Role returns the analyst's role.
func (a *Analyst) Role() Role { return a.agent.Role() }

// Report fetches the analyst's tools and asks the model for an assessment.
// A DataUnavailable failure propagates: analysts abort the run rather than
// reason over partial data.
func (a *Analyst) Report(ctx context.Context, ticker string, date string) (string, error) {
	args := dataflows.Args{Ticker: ticker, Date: date}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Analyze %s as of %s using the data below.\n\n", ticker, date)

	for _, tool := range a.tools {
		result, err := a.router.Fetch(ctx, tool, args)
		if err != nil {
			return "", errors.Wrapf(err, "analyst %s tool %s", a.agent.Role(), tool)
		}
		fmt.Fprintf(&sb, "=== %s (%s) ===\n%s\n\n", tool, result.Source, renderResult(result))
	}

	sb.WriteString("Write a focused report ending with a one-paragraph summary.")

	report, err := a.agent.Respond(ctx, sb.String())
	if err != nil {
		return "", err
	}

	a.log.Infow("analyst report ready", "ticker", ticker, "chars", len(report))
	return report, nil
}

func renderResult(result *dataflows.ToolResult) string {
	if result.Text != "" {
		return result.Text
	}

	var sb strings.Builder
	// Most recent bars carry the signal; cap the dump the model sees.
	bars := result.Bars
	if len(bars) > 30 {
		bars = bars[len(bars)-30:]
	}
	sb.WriteString("date,open,high,low,close,volume\n")
	for _, bar := range bars {
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s\n",
			bar.Date, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}
	return sb.String()
}

// DefaultAnalysts builds the standard analyst bench wired to the router.
func DefaultAnalysts(quick ai.ChatClient, router *dataflows.Router) []*Analyst {
	return []*Analyst{
		NewAnalyst(RoleMarketAnalyst,
			"You are a market analyst. Assess trend, momentum, and volatility from price data and technical indicators.",
			[]string{dataflows.ToolStockData, dataflows.ToolIndicators},
			quick, router),
		NewAnalyst(RoleSentimentAnalyst,
			"You are a sentiment analyst. Gauge market mood from recent headlines and insider activity.",
			[]string{dataflows.ToolCompanyNews, dataflows.ToolInsiderTransactions},
			quick, router),
		NewAnalyst(RoleNewsAnalyst,
			"You are a news analyst. Extract catalysts and macro context from company news.",
			[]string{dataflows.ToolCompanyNews},
			quick, router),
		NewAnalyst(RoleFundamentalsAnalyst,
			"You are a fundamentals analyst. Judge valuation and financial health from reported metrics.",
			[]string{dataflows.ToolFundamentals},
			quick, router),
	}
}
