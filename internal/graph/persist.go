package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"tradingagents/pkg/errors"
)

// SaveDecision writes the record under <resultsDir>/<ticker>/<date>/ as both
// machine-readable JSON and a human report. It returns the run directory.
func SaveDecision(resultsDir string, record *DecisionRecord) (string, error) {
	if record == nil {
		return "", errors.Wrap(errors.ErrInvalidInput, "decision record is nil")
	}

	dir := filepath.Join(resultsDir, record.Ticker, record.TradeDate)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create results dir %s", dir)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal decision record")
	}
	if err := os.WriteFile(filepath.Join(dir, "decision.json"), data, 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write decision.json")
	}

	report := renderReport(record)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(report), 0o644); err != nil {
		return "", errors.Wrap(err, "failed to write report.md")
	}

	return dir, nil
}

func renderReport(record *DecisionRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s on %s\n\n", record.Ticker, record.TradeDate)
	fmt.Fprintf(&sb, "**Action: %s**\n\n", record.Action)
	fmt.Fprintf(&sb, "Generated %s (run %s).\n\n", humanize.Time(record.CreatedAt), record.ID)

	sb.WriteString("## Analyst Reports\n\n")
	for role, text := range record.AnalystReports {
		fmt.Fprintf(&sb, "### %s\n\n%s\n\n", role, text)
	}

	fmt.Fprintf(&sb, "## Investment Debate (%d rounds, %s)\n\n```\n%s```\n\n",
		record.DebateState.Rounds(), record.DebateState.Outcome, record.DebateState.Transcript())
	fmt.Fprintf(&sb, "## Investment Plan\n\n%s\n\n", record.InvestmentPlan)
	fmt.Fprintf(&sb, "## Trader Plan\n\n%s\n\n", record.TraderPlan)
	fmt.Fprintf(&sb, "## Risk Discussion (%d rounds, %s)\n\n```\n%s```\n\n",
		record.RiskState.Rounds(), record.RiskState.Outcome, record.RiskState.Transcript())
	fmt.Fprintf(&sb, "## Final Decision\n\n%s\n", record.Rationale)

	return sb.String()
}
