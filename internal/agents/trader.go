package agents

import (
	"context"
	"fmt"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/memory"
)

// Trader turns the investment plan into a concrete trade proposal.
type Trader struct {
	agent *Agent
	store *memory.Store
}

// NewTrader creates the trader agent.
func NewTrader(quick ai.ChatClient, store *memory.Store) *Trader {
	return &Trader{
		agent: New(RoleTrader,
			"You are the trader. Convert the investment plan into a concrete proposal: direction, sizing rationale, entry and exit conditions.",
			quick),
		store: store,
	}
}

// Propose writes the trade proposal for the ticker.
func (t *Trader) Propose(ctx context.Context, ticker string, plan string) (string, error) {
	lessons := "No past memories found."
	if t.store != nil {
		recalled, err := t.store.Recall(ctx, memory.CollectionTrader, plan, 2)
		if err == nil {
			lessons = memory.FormatLessons(recalled)
		}
	}

	prompt := fmt.Sprintf(
		"Ticker: %s\n\nInvestment plan:\n%s\n\nLessons from similar past situations:\n%s\n\nWrite the trade proposal.",
		ticker, plan, lessons)

	return t.agent.Respond(ctx, prompt)
}
