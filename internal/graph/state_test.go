package graph

import (
	"fmt"
	"testing"

	"tradingagents/pkg/errors"
)

func TestRecursionGuard_Boundary(t *testing.T) {
	guard := NewRecursionGuard(5)

	for i := 0; i < 5; i++ {
		if err := guard.Enter(fmt.Sprintf("stage_%d", i)); err != nil {
			t.Fatalf("entry %d within limit failed: %v", i+1, err)
		}
	}

	err := guard.Enter("one_too_many")
	if !errors.Is(err, errors.ErrRecursionLimit) {
		t.Errorf("got %v, want ErrRecursionLimit", err)
	}
	if guard.Entries() != 6 {
		t.Errorf("entries = %d, want 6", guard.Entries())
	}
}

func TestDebateState_Finalize(t *testing.T) {
	state := DebateState{Name: "debate", Phase: PhaseConverged}
	if err := state.Finalize(); err != nil {
		t.Fatalf("Finalize from converged failed: %v", err)
	}
	if state.Phase != PhaseFinalized {
		t.Errorf("phase = %q", state.Phase)
	}

	state = DebateState{Name: "debate", Phase: PhaseRoundLimitReached}
	if err := state.Finalize(); err != nil {
		t.Fatalf("Finalize from round limit failed: %v", err)
	}

	for _, phase := range []Phase{PhaseNotStarted, PhaseInRound, PhaseFinalized} {
		state = DebateState{Name: "debate", Phase: phase}
		if err := state.Finalize(); !errors.Is(err, errors.ErrOrchestration) {
			t.Errorf("Finalize from %q: got %v, want ErrOrchestration", phase, err)
		}
	}
}

func TestDebateState_Transcript(t *testing.T) {
	state := DebateState{
		Turns: []Turn{
			{Speaker: "bull", Argument: "buy it", Round: 1},
			{Speaker: "bear", Argument: "sell it", Round: 1},
		},
	}

	got := state.Transcript()
	want := "[round 1] bull: buy it\n[round 1] bear: sell it\n"
	if got != want {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}
