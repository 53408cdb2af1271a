package graph

import (
	"context"

	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Speaker produces one argument given the shared context and the transcript
// so far.
type Speaker interface {
	Name() string
	Speak(ctx context.Context, shared, transcript string) (string, error)
}

// ConvergenceFunc decides after a completed round whether the exchange has
// produced enough signal to stop early. An error is treated as "continue";
// convergence is an optimization, not a correctness gate.
type ConvergenceFunc func(ctx context.Context, transcript string) (bool, error)

// Controller runs a bounded multi-speaker exchange. Both the investment
// debate and the risk discussion are instances of it; they differ only in
// speakers, round cap and convergence predicate.
type Controller struct {
	name      string
	speakers  []Speaker
	maxRounds int
	converged ConvergenceFunc
	guard     *RecursionGuard
	log       *logger.Logger
}

// NewController builds a controller. maxRounds below one is raised to one:
// every debate runs at least a full round before any outcome is possible.
func NewController(name string, speakers []Speaker, maxRounds int, converged ConvergenceFunc, guard *RecursionGuard) *Controller {
	if maxRounds < 1 {
		maxRounds = 1
	}
	return &Controller{
		name:      name,
		speakers:  speakers,
		maxRounds: maxRounds,
		converged: converged,
		guard:     guard,
		log:       logger.Get().With("component", "debate_controller", "debate", name),
	}
}

// Run drives the exchange to a terminal phase. Each round gives every
// speaker exactly one turn, in fixed order. After a completed round the
// convergence predicate may end the exchange early; hitting the round cap
// ends it without consulting the predicate. Any speaker error aborts the
// run with the partial state.
func (c *Controller) Run(ctx context.Context, shared string) (DebateState, error) {
	state := DebateState{Name: c.name, Phase: PhaseNotStarted}
	if len(c.speakers) == 0 {
		return state, errors.Wrapf(errors.ErrOrchestration, "debate %s has no speakers", c.name)
	}

	for state.Round < c.maxRounds {
		state.Phase = PhaseInRound
		state.Round++
		for _, sp := range c.speakers {
			if err := ctx.Err(); err != nil {
				return state, errors.Wrapf(err, "debate %s canceled in round %d", c.name, state.Round)
			}
			if c.guard != nil {
				if err := c.guard.Enter(c.name + "/" + sp.Name()); err != nil {
					return state, err
				}
			}
			arg, err := sp.Speak(ctx, shared, state.Transcript())
			if err != nil {
				return state, errors.Wrapf(err, "debate %s: speaker %s failed in round %d", c.name, sp.Name(), state.Round)
			}
			state.Turns = append(state.Turns, Turn{Speaker: sp.Name(), Argument: arg, Round: state.Round})
		}

		if state.Round >= c.maxRounds {
			break
		}
		if c.converged != nil {
			done, err := c.converged(ctx, state.Transcript())
			if err != nil {
				c.log.Warnw("Convergence check failed, continuing debate", "round", state.Round, "error", err)
			} else if done {
				state.Phase = PhaseConverged
				state.Outcome = OutcomeConverged
				c.log.Infow("Debate converged", "rounds", state.Round, "turns", len(state.Turns))
				return state, nil
			}
		}
	}

	state.Phase = PhaseRoundLimitReached
	state.Outcome = OutcomeRoundLimitReached
	c.log.Infow("Debate reached round limit", "rounds", state.Round, "turns", len(state.Turns))
	return state, nil
}
