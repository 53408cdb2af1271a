package graph

import (
	"fmt"
	"strings"
	"time"

	"tradingagents/pkg/errors"
)

// Phase is the debate controller's state.
type Phase string

const (
	PhaseNotStarted        Phase = "not_started"
	PhaseInRound           Phase = "in_round"
	PhaseConverged         Phase = "converged"
	PhaseRoundLimitReached Phase = "round_limit_reached"
	PhaseFinalized         Phase = "finalized"
)

// Outcome records how a finalized debate ended.
type Outcome string

const (
	OutcomeConverged         Outcome = "converged"
	OutcomeRoundLimitReached Outcome = "round_limit_reached"
)

// Turn is one argument in a debate. The turn sequence is append-only within
// a run and round indexes increase monotonically.
type Turn struct {
	Speaker  string `json:"speaker"`
	Argument string `json:"argument"`
	Round    int    `json:"round"`
}

// DebateState is the transcript and position of one bounded-round exchange.
type DebateState struct {
	Name    string  `json:"name"`
	Turns   []Turn  `json:"turns"`
	Round   int     `json:"round"`
	Phase   Phase   `json:"phase"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// Transcript renders the turns for inclusion in prompts.
func (s DebateState) Transcript() string {
	var sb strings.Builder
	for _, turn := range s.Turns {
		fmt.Fprintf(&sb, "[round %d] %s: %s\n", turn.Round, turn.Speaker, turn.Argument)
	}
	return sb.String()
}

// Rounds returns the number of completed rounds.
func (s DebateState) Rounds() int {
	return s.Round
}

// Finalize seals the state once its transcript has been consumed by the
// downstream judge. Only a terminal debate may be finalized.
func (s *DebateState) Finalize() error {
	if s.Phase != PhaseConverged && s.Phase != PhaseRoundLimitReached {
		return errors.Wrapf(errors.ErrOrchestration,
			"debate %s cannot finalize from phase %s", s.Name, s.Phase)
	}
	s.Phase = PhaseFinalized
	return nil
}

// Action is the decision the pipeline ultimately emits.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// DecisionRecord is the run's final output. Immutable once emitted; a failed
// run never produces one.
type DecisionRecord struct {
	ID              string            `json:"id"`
	Ticker          string            `json:"ticker"`
	TradeDate       string            `json:"trade_date"`
	Action          Action            `json:"action"`
	Rationale       string            `json:"rationale"`
	InvestmentPlan  string            `json:"investment_plan"`
	TraderPlan      string            `json:"trader_plan"`
	AnalystReports  map[string]string `json:"analyst_reports"`
	DebateState     DebateState       `json:"debate_state"`
	RiskState       DebateState       `json:"risk_state"`
	CreatedAt       time.Time         `json:"created_at"`
}

// RecursionGuard bounds total stage entries within one run. Every stage
// entry, including debate turns and judge-requested re-entries, counts
// against the same ceiling; exceeding it means the pipeline is looping
// pathologically, not that one debate ran long.
type RecursionGuard struct {
	limit   int
	entries int
}

// NewRecursionGuard creates a guard with the configured ceiling.
func NewRecursionGuard(limit int) *RecursionGuard {
	return &RecursionGuard{limit: limit}
}

// Enter records a stage entry. It fails if and only if the entry count
// exceeds the limit.
func (g *RecursionGuard) Enter(stage string) error {
	g.entries++
	if g.entries > g.limit {
		return errors.Wrapf(errors.ErrRecursionLimit,
			"stage %s is entry %d, limit %d", stage, g.entries, g.limit)
	}
	return nil
}

// Entries returns the number of stage entries so far.
func (g *RecursionGuard) Entries() int {
	return g.entries
}
