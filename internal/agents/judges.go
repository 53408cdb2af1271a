package agents

import (
	"context"
	"fmt"
	"strings"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/memory"
)

// ResearchManager judges the investment debate and writes the plan.
type ResearchManager struct {
	agent *Agent
	store *memory.Store
}

// NewResearchManager creates the investment-debate judge. Deep-think model:
// plan synthesis is the heaviest reasoning step in the pipeline.
func NewResearchManager(deep ai.ChatClient, store *memory.Store) *ResearchManager {
	return &ResearchManager{
		agent: New(RoleResearchManager,
			"You are the research manager. Weigh the bull and bear cases critically, commit to a stance, and write an actionable investment plan.",
			deep),
		store: store,
	}
}

// DecidePlan synthesizes the finished debate into an investment plan.
func (m *ResearchManager) DecidePlan(ctx context.Context, reports string, transcript string) (string, error) {
	lessons := "No past memories found."
	if m.store != nil {
		recalled, err := m.store.Recall(ctx, memory.CollectionInvestJudge, reports, 2)
		if err == nil {
			lessons = memory.FormatLessons(recalled)
		}
	}

	prompt := fmt.Sprintf(
		"Analyst reports:\n%s\n\nLessons from similar past situations:\n%s\n\nCompleted debate:\n%s\n\nDecide the stance and write the investment plan.",
		reports, lessons, transcript)

	return m.agent.Respond(ctx, prompt)
}

// JudgeSufficient is the production convergence predicate for the investment
// debate: the quick model issues a single-token SUFFICIENT/CONTINUE verdict.
func JudgeSufficient(quick ai.ChatClient) func(ctx context.Context, transcript string) (bool, error) {
	judge := New(RoleResearchManager,
		"You moderate a bull-vs-bear investment debate. Answer with exactly one word.",
		quick)

	return func(ctx context.Context, transcript string) (bool, error) {
		prompt := fmt.Sprintf(
			"Debate so far:\n%s\n\nHave both sides fully aired their strongest arguments so a decision can be made now? Answer SUFFICIENT or CONTINUE.",
			transcript)

		verdict, err := judge.Respond(ctx, prompt)
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToUpper(verdict), "SUFFICIENT"), nil
	}
}

// RiskJudge closes the risk discussion with the final decision.
type RiskJudge struct {
	agent *Agent
	store *memory.Store
}

// NewRiskJudge creates the risk-discussion judge.
func NewRiskJudge(deep ai.ChatClient, store *memory.Store) *RiskJudge {
	return &RiskJudge{
		agent: New(RoleRiskJudge,
			"You are the portfolio risk judge. Weigh the risk discussion against the trader's plan and issue the final decision. End with 'FINAL TRANSACTION PROPOSAL: **BUY**', '**SELL**', or '**HOLD**'.",
			deep),
		store: store,
	}
}

// Decide produces the final decision text from the risk discussion.
func (j *RiskJudge) Decide(ctx context.Context, traderPlan string, transcript string) (string, error) {
	lessons := "No past memories found."
	if j.store != nil {
		recalled, err := j.store.Recall(ctx, memory.CollectionRiskJudge, traderPlan, 2)
		if err == nil {
			lessons = memory.FormatLessons(recalled)
		}
	}

	prompt := fmt.Sprintf(
		"Trader's plan:\n%s\n\nLessons from similar past situations:\n%s\n\nCompleted risk discussion:\n%s\n\nIssue the final decision.",
		traderPlan, lessons, transcript)

	return j.agent.Respond(ctx, prompt)
}
