package graph

import (
	"context"
	"fmt"
	"testing"

	"tradingagents/pkg/errors"
)

// scriptedSpeaker returns canned arguments and counts its turns.
type scriptedSpeaker struct {
	name  string
	turns int
	err   error
}

func (s *scriptedSpeaker) Name() string { return s.name }

func (s *scriptedSpeaker) Speak(_ context.Context, _, _ string) (string, error) {
	s.turns++
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s argument %d", s.name, s.turns), nil
}

func neverConverge(context.Context, string) (bool, error) { return false, nil }

func TestController_NoSpeakers(t *testing.T) {
	ctl := NewController("empty", nil, 1, nil, nil)

	_, err := ctl.Run(context.Background(), "shared")
	if !errors.Is(err, errors.ErrOrchestration) {
		t.Errorf("got %v, want ErrOrchestration", err)
	}
}

func TestController_RoundCapHonored(t *testing.T) {
	for _, limit := range []int{1, 2, 5} {
		bull := &scriptedSpeaker{name: "bull"}
		bear := &scriptedSpeaker{name: "bear"}
		ctl := NewController("debate", []Speaker{bull, bear}, limit, neverConverge, nil)

		state, err := ctl.Run(context.Background(), "shared")
		if err != nil {
			t.Fatalf("cap %d: Run failed: %v", limit, err)
		}
		if state.Rounds() != limit {
			t.Errorf("cap %d: ran %d rounds", limit, state.Rounds())
		}
		if state.Outcome != OutcomeRoundLimitReached {
			t.Errorf("cap %d: outcome = %q", limit, state.Outcome)
		}
		if bull.turns != limit || bear.turns != limit {
			t.Errorf("cap %d: turns bull=%d bear=%d, want one per round each", limit, bull.turns, bear.turns)
		}
		if len(state.Turns) != 2*limit {
			t.Errorf("cap %d: transcript has %d turns, want %d", limit, len(state.Turns), 2*limit)
		}
	}
}

func TestController_TurnOrderAndRounds(t *testing.T) {
	bull := &scriptedSpeaker{name: "bull"}
	bear := &scriptedSpeaker{name: "bear"}
	ctl := NewController("debate", []Speaker{bull, bear}, 2, neverConverge, nil)

	state, err := ctl.Run(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantSpeakers := []string{"bull", "bear", "bull", "bear"}
	wantRounds := []int{1, 1, 2, 2}
	for i, turn := range state.Turns {
		if turn.Speaker != wantSpeakers[i] {
			t.Errorf("turn %d speaker = %q, want %q", i, turn.Speaker, wantSpeakers[i])
		}
		if turn.Round != wantRounds[i] {
			t.Errorf("turn %d round = %d, want %d", i, turn.Round, wantRounds[i])
		}
	}
}

func TestController_ConvergenceStopsEarly(t *testing.T) {
	bull := &scriptedSpeaker{name: "bull"}
	bear := &scriptedSpeaker{name: "bear"}
	converge := func(context.Context, string) (bool, error) { return true, nil }
	ctl := NewController("debate", []Speaker{bull, bear}, 5, converge, nil)

	state, err := ctl.Run(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state.Rounds() != 1 {
		t.Errorf("converged debate ran %d rounds, want 1", state.Rounds())
	}
	if state.Outcome != OutcomeConverged {
		t.Errorf("outcome = %q, want converged", state.Outcome)
	}
	if state.Phase != PhaseConverged {
		t.Errorf("phase = %q, want %q", state.Phase, PhaseConverged)
	}
}

func TestController_ConvergenceNotConsultedAtCap(t *testing.T) {
	calls := 0
	converge := func(context.Context, string) (bool, error) {
		calls++
		return true, nil
	}
	ctl := NewController("debate",
		[]Speaker{&scriptedSpeaker{name: "bull"}, &scriptedSpeaker{name: "bear"}},
		1, converge, nil)

	state, err := ctl.Run(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 0 {
		t.Errorf("predicate consulted %d times at the round cap", calls)
	}
	if state.Outcome != OutcomeRoundLimitReached {
		t.Errorf("outcome = %q", state.Outcome)
	}
}

func TestController_ConvergenceErrorMeansContinue(t *testing.T) {
	converge := func(context.Context, string) (bool, error) {
		return true, errors.New("judge unreachable")
	}
	ctl := NewController("debate",
		[]Speaker{&scriptedSpeaker{name: "bull"}, &scriptedSpeaker{name: "bear"}},
		2, converge, nil)

	state, err := ctl.Run(context.Background(), "shared")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state.Rounds() != 2 {
		t.Errorf("failing predicate stopped the debate at round %d", state.Rounds())
	}
}

func TestController_SpeakerErrorAborts(t *testing.T) {
	bull := &scriptedSpeaker{name: "bull"}
	bear := &scriptedSpeaker{name: "bear", err: errors.New("model unavailable")}
	ctl := NewController("debate", []Speaker{bull, bear}, 3, neverConverge, nil)

	state, err := ctl.Run(context.Background(), "shared")
	if err == nil {
		t.Fatal("expected speaker error to abort the debate")
	}
	if len(state.Turns) != 1 {
		t.Errorf("partial state has %d turns, want 1", len(state.Turns))
	}
}

func TestController_GuardTripsMidDebate(t *testing.T) {
	guard := NewRecursionGuard(3)
	ctl := NewController("debate",
		[]Speaker{&scriptedSpeaker{name: "bull"}, &scriptedSpeaker{name: "bear"}},
		5, neverConverge, guard)

	_, err := ctl.Run(context.Background(), "shared")
	if !errors.Is(err, errors.ErrRecursionLimit) {
		t.Errorf("got %v, want ErrRecursionLimit", err)
	}
}

func TestController_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctl := NewController("debate",
		[]Speaker{&scriptedSpeaker{name: "bull"}}, 2, neverConverge, nil)

	_, err := ctl.Run(ctx, "shared")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
