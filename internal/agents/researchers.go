package agents

import (
	"context"
	"fmt"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/memory"
)

// Researcher argues one side of the investment debate.
type Researcher struct {
	agent  *Agent
	store  *memory.Store
	memKey string
}

// NewBullResearcher creates the bull-side debater.
func NewBullResearcher(client ai.ChatClient, store *memory.Store) *Researcher {
	return &Researcher{
		agent: New(RoleBullResearcher,
			"You are the bull researcher. Argue the strongest evidence-based case FOR investing, and rebut the bear's latest points directly.",
			client),
		store:  store,
		memKey: memory.CollectionBull,
	}
}

// NewBearResearcher creates the bear-side debater.
func NewBearResearcher(client ai.ChatClient, store *memory.Store) *Researcher {
	return &Researcher{
		agent: New(RoleBearResearcher,
			"You are the bear researcher. Argue the strongest evidence-based case AGAINST investing, and rebut the bull's latest points directly.",
			client),
		store:  store,
		memKey: memory.CollectionBear,
	}
}

// Role returns the researcher's role.
func (r *Researcher) Role() Role { return r.agent.Role() }

// Argue produces this researcher's next turn given the analyst reports and
// the debate transcript so far.
func (r *Researcher) Argue(ctx context.Context, reports string, transcript string) (string, error) {
	lessons := "No past memories found."
	if r.store != nil {
		recalled, err := r.store.Recall(ctx, r.memKey, reports, 2)
		if err == nil {
			lessons = memory.FormatLessons(recalled)
		}
	}

	prompt := fmt.Sprintf(
		"Analyst reports:\n%s\n\nLessons from similar past situations:\n%s\n\nDebate so far:\n%s\n\nDeliver your next argument.",
		reports, lessons, transcript)

	return r.agent.Respond(ctx, prompt)
}

// RiskDebater argues one risk appetite in the risk discussion.
type RiskDebater struct {
	agent *Agent
}

// NewRiskyDebater advocates for aggressive positioning.
func NewRiskyDebater(client ai.ChatClient) *RiskDebater {
	return &RiskDebater{agent: New(RoleRiskyDebater,
		"You are the aggressive risk debater. Argue for bold positioning and high-reward opportunities in the proposed plan.",
		client)}
}

// NewSafeDebater advocates for conservative positioning.
func NewSafeDebater(client ai.ChatClient) *RiskDebater {
	return &RiskDebater{agent: New(RoleSafeDebater,
		"You are the conservative risk debater. Argue for capital preservation and flag every exposure in the proposed plan.",
		client)}
}

// NewNeutralDebater weighs both extremes.
func NewNeutralDebater(client ai.ChatClient) *RiskDebater {
	return &RiskDebater{agent: New(RoleNeutralDebater,
		"You are the neutral risk debater. Weigh the aggressive and conservative views and argue for a balanced stance.",
		client)}
}

// Role returns the debater's role.
func (d *RiskDebater) Role() Role { return d.agent.Role() }

// Argue produces the debater's next turn on the trader's plan.
func (d *RiskDebater) Argue(ctx context.Context, traderPlan string, transcript string) (string, error) {
	prompt := fmt.Sprintf(
		"Trader's proposed plan:\n%s\n\nRisk discussion so far:\n%s\n\nDeliver your next argument.",
		traderPlan, transcript)

	return d.agent.Respond(ctx, prompt)
}
