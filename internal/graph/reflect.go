package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tradingagents/internal/agents"
	"tradingagents/internal/memory"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Reflect scores a finished decision against realized returns and stores one
// lesson per learning role. Lessons are recalled by role on future runs over
// similar situations.
func (g *Graph) Reflect(ctx context.Context, record *DecisionRecord, returnsPct float64) error {
	if record == nil {
		return errors.Wrap(errors.ErrInvalidInput, "decision record is nil")
	}
	if g.store == nil {
		return errors.Wrap(errors.ErrConfiguration, "reflection requires a memory store")
	}

	situation := summarizeSituation(record)
	outcome := fmt.Sprintf("The %s decision on %s %s returned %+.2f%%.",
		record.Action, record.Ticker, record.TradeDate, returnsPct)

	reflector := agents.New("reflector",
		"You review a finished trading decision against its realized outcome. Write one concise, transferable lesson the given role should remember.",
		g.deep)

	targets := []struct {
		collection   string
		contribution string
	}{
		{memory.CollectionBull, roleTurns(record.DebateState, string(agents.RoleBullResearcher))},
		{memory.CollectionBear, roleTurns(record.DebateState, string(agents.RoleBearResearcher))},
		{memory.CollectionTrader, record.TraderPlan},
		{memory.CollectionInvestJudge, record.InvestmentPlan},
		{memory.CollectionRiskJudge, record.Rationale},
	}

	for _, target := range targets {
		prompt := fmt.Sprintf(
			"Role: %s\n\nWhat the role produced:\n%s\n\nOutcome: %s\n\nWrite the lesson.",
			target.collection, target.contribution, outcome)

		lesson, err := reflector.Respond(ctx, prompt)
		if err != nil {
			return errors.Wrapf(err, "reflection for %s failed", target.collection)
		}

		err = g.store.AddLessons(ctx, target.collection, []memory.Lesson{{
			ID:             uuid.NewString(),
			Situation:      situation,
			Recommendation: lesson,
		}})
		if err != nil {
			return err
		}
	}

	logger.Get().Infow("Reflection stored", "ticker", record.Ticker, "returns_pct", returnsPct)
	return nil
}

// summarizeSituation keys a lesson by the market context the run saw, so
// recall matches on circumstances rather than on the decision taken.
func summarizeSituation(record *DecisionRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s on %s\n", record.Ticker, record.TradeDate)
	for role, report := range record.AnalystReports {
		fmt.Fprintf(&sb, "[%s] %s\n", role, truncate(report, 600))
	}
	return sb.String()
}

func roleTurns(state DebateState, speaker string) string {
	var sb strings.Builder
	for _, turn := range state.Turns {
		if turn.Speaker == speaker {
			sb.WriteString(turn.Argument)
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return "(no turns recorded)"
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
