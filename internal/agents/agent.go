package agents

import (
	"context"

	"tradingagents/internal/adapters/ai"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Role identifies a specialized agent within the pipeline.
type Role string

const (
	RoleMarketAnalyst       Role = "market_analyst"
	RoleSentimentAnalyst    Role = "sentiment_analyst"
	RoleNewsAnalyst         Role = "news_analyst"
	RoleFundamentalsAnalyst Role = "fundamentals_analyst"
	RoleBullResearcher      Role = "bull_researcher"
	RoleBearResearcher      Role = "bear_researcher"
	RoleResearchManager     Role = "research_manager"
	RoleTrader              Role = "trader"
	RoleRiskyDebater        Role = "risky_debater"
	RoleSafeDebater         Role = "safe_debater"
	RoleNeutralDebater      Role = "neutral_debater"
	RoleRiskJudge           Role = "risk_judge"
)

// Agent binds a role's system prompt to a chat client.
type Agent struct {
	role   Role
	system string
	client ai.ChatClient
	log    *logger.Logger
}

// New creates an agent for a role.
func New(role Role, system string, client ai.ChatClient) *Agent {
	return &Agent{
		role:   role,
		system: system,
		client: client,
		log:    logger.Get().With("component", "agent", "role", string(role)),
	}
}

// Role returns the agent's role.
func (a *Agent) Role() Role { return a.role }

// Respond sends the prompt to the agent's model and returns its reply.
func (a *Agent) Respond(ctx context.Context, prompt string) (string, error) {
	reply, err := a.client.Complete(ctx, ai.CompletionRequest{
		System: a.system,
		Messages: []ai.Message{
			{Role: ai.RoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", errors.Wrapf(err, "agent %s completion failed", a.role)
	}

	a.log.Debugw("agent responded", "prompt_chars", len(prompt), "reply_chars", len(reply))
	return reply, nil
}
