package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tradingagents/pkg/errors"
)

func sampleRecord() *DecisionRecord {
	return &DecisionRecord{
		ID:             "run-1",
		Ticker:         "AAPL",
		TradeDate:      "2026-08-01",
		Action:         ActionBuy,
		Rationale:      "FINAL TRANSACTION PROPOSAL: **BUY**",
		InvestmentPlan: "accumulate on weakness",
		TraderPlan:     "buy 100 shares at open",
		AnalystReports: map[string]string{"market_analyst": "uptrend intact"},
		DebateState: DebateState{
			Name:    "investment_debate",
			Round:   1,
			Phase:   PhaseFinalized,
			Outcome: OutcomeRoundLimitReached,
			Turns:   []Turn{{Speaker: "bull_researcher", Argument: "momentum is strong", Round: 1}},
		},
		RiskState: DebateState{
			Name:    "risk_discussion",
			Round:   1,
			Phase:   PhaseFinalized,
			Outcome: OutcomeConverged,
			Turns:   []Turn{{Speaker: "safe_debater", Argument: "cap the position", Round: 1}},
		},
		CreatedAt: time.Date(2026, 8, 1, 21, 0, 0, 0, time.UTC),
	}
}

func TestSaveDecision(t *testing.T) {
	resultsDir := t.TempDir()

	dir, err := SaveDecision(resultsDir, sampleRecord())
	if err != nil {
		t.Fatalf("SaveDecision failed: %v", err)
	}
	if dir != filepath.Join(resultsDir, "AAPL", "2026-08-01") {
		t.Errorf("run dir = %q", dir)
	}

	data, err := os.ReadFile(filepath.Join(dir, "decision.json"))
	if err != nil {
		t.Fatalf("decision.json missing: %v", err)
	}
	var loaded DecisionRecord
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("decision.json is not valid JSON: %v", err)
	}
	if loaded.Action != ActionBuy || loaded.Ticker != "AAPL" {
		t.Errorf("reloaded record = %+v", loaded)
	}
	if len(loaded.DebateState.Turns) != 1 {
		t.Errorf("debate turns lost in persistence")
	}

	report, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("report.md missing: %v", err)
	}
	for _, want := range []string{"**Action: BUY**", "momentum is strong", "cap the position", "accumulate on weakness"} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestSaveDecision_NilRecord(t *testing.T) {
	_, err := SaveDecision(t.TempDir(), nil)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}
