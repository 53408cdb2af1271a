package graph

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tradingagents/internal/adapters/ai"
	"tradingagents/internal/adapters/config"
	"tradingagents/internal/agents"
	"tradingagents/internal/dataflows"
	"tradingagents/internal/memory"
	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// Graph wires the full analyst -> debate -> trader -> risk -> decision
// pipeline. Construction resolves every model binding up front so a
// misconfigured run fails before the first model call.
type Graph struct {
	cfg   config.Config
	deep  ai.ChatClient
	quick ai.ChatClient

	router *dataflows.Router
	store  *memory.Store

	analysts     []*agents.Analyst
	bull         *agents.Researcher
	bear         *agents.Researcher
	manager      *agents.ResearchManager
	trader       *agents.Trader
	riskDebaters []*agents.RiskDebater
	riskJudge    *agents.RiskJudge

	converged     ConvergenceFunc
	riskConverged ConvergenceFunc

	log *logger.Logger
}

// Option overrides a collaborator, mainly for tests.
type Option func(*Graph)

// WithChatClients injects the deep and quick chat clients instead of
// resolving them from the configuration.
func WithChatClients(deep, quick ai.ChatClient) Option {
	return func(g *Graph) {
		g.deep = deep
		g.quick = quick
	}
}

// WithRouter injects the data source router.
func WithRouter(router *dataflows.Router) Option {
	return func(g *Graph) { g.router = router }
}

// WithMemory injects the reflection memory store.
func WithMemory(store *memory.Store) Option {
	return func(g *Graph) { g.store = store }
}

// WithConvergence overrides the investment debate's convergence predicate.
func WithConvergence(fn ConvergenceFunc) Option {
	return func(g *Graph) { g.converged = fn }
}

// WithRiskConvergence overrides the risk discussion's convergence predicate.
func WithRiskConvergence(fn ConvergenceFunc) Option {
	return func(g *Graph) { g.riskConverged = fn }
}

// New builds the pipeline. Every role binding is resolved and its client
// constructed here; a missing key or unknown provider surfaces as a
// configuration error immediately.
func New(cfg config.Config, opts ...Option) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		cfg: cfg,
		log: logger.Get().With("component", "graph"),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.deep == nil || g.quick == nil || g.store == nil {
		bindings, err := ai.ResolveAll(cfg)
		if err != nil {
			return nil, err
		}
		if g.deep == nil {
			if g.deep, err = ai.NewChatClient(bindings[ai.RoleDeepThink], ai.ClientOptions{}); err != nil {
				return nil, err
			}
		}
		if g.quick == nil {
			if g.quick, err = ai.NewChatClient(bindings[ai.RoleQuickThink], ai.ClientOptions{}); err != nil {
				return nil, err
			}
		}
		if g.store == nil {
			embedder, err := ai.NewEmbeddingClient(bindings[ai.RoleEmbedding], ai.ClientOptions{})
			if err != nil {
				return nil, err
			}
			memDir := filepath.Join(cfg.Paths.ResultsDir, "memory")
			if g.store, err = memory.NewStore(memory.Config{PersistDir: memDir}, embedder); err != nil {
				return nil, err
			}
		}
	}

	if g.router == nil {
		g.router = dataflows.NewRouter(cfg)
	}
	if g.converged == nil {
		g.converged = agents.JudgeSufficient(g.quick)
	}
	if g.riskConverged == nil {
		g.riskConverged = agents.JudgeSufficient(g.quick)
	}

	g.analysts = agents.DefaultAnalysts(g.quick, g.router)
	g.bull = agents.NewBullResearcher(g.quick, g.store)
	g.bear = agents.NewBearResearcher(g.quick, g.store)
	g.manager = agents.NewResearchManager(g.deep, g.store)
	g.trader = agents.NewTrader(g.quick, g.store)
	g.riskDebaters = []*agents.RiskDebater{
		agents.NewRiskyDebater(g.quick),
		agents.NewSafeDebater(g.quick),
		agents.NewNeutralDebater(g.quick),
	}
	g.riskJudge = agents.NewRiskJudge(g.deep, g.store)

	return g, nil
}

type researcherSpeaker struct {
	r *agents.Researcher
}

func (s researcherSpeaker) Name() string { return string(s.r.Role()) }

func (s researcherSpeaker) Speak(ctx context.Context, shared, transcript string) (string, error) {
	return s.r.Argue(ctx, shared, transcript)
}

type riskSpeaker struct {
	d *agents.RiskDebater
}

func (s riskSpeaker) Name() string { return string(s.d.Role()) }

func (s riskSpeaker) Speak(ctx context.Context, shared, transcript string) (string, error) {
	return s.d.Argue(ctx, shared, transcript)
}

// Propagate runs the full pipeline for one ticker on one trade date and
// returns the decision record. A failed stage aborts the run; no record is
// emitted.
func (g *Graph) Propagate(ctx context.Context, ticker string, date string) (*DecisionRecord, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "ticker is empty")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "trade date %q is not YYYY-MM-DD", date)
	}

	guard := NewRecursionGuard(g.cfg.Rounds.MaxRecurLimit)
	g.log.Infow("Run starting", "ticker", ticker, "date", date,
		"debate_rounds", g.cfg.Rounds.MaxDebateRounds, "risk_rounds", g.cfg.Rounds.MaxRiskDiscussRounds)

	reports, combined, err := g.runAnalysts(ctx, guard, ticker, date)
	if err != nil {
		return nil, err
	}

	debateCtl := NewController("investment_debate",
		[]Speaker{researcherSpeaker{g.bull}, researcherSpeaker{g.bear}},
		g.cfg.Rounds.MaxDebateRounds, g.converged, guard)
	debate, err := debateCtl.Run(ctx, combined)
	if err != nil {
		return nil, g.stageFailed("investment_debate", err)
	}

	if err := guard.Enter("research_manager"); err != nil {
		return nil, err
	}
	plan, err := g.manager.DecidePlan(ctx, combined, debate.Transcript())
	if err != nil {
		return nil, g.stageFailed("research_manager", err)
	}
	if err := debate.Finalize(); err != nil {
		return nil, err
	}

	if err := guard.Enter("trader"); err != nil {
		return nil, err
	}
	traderPlan, err := g.trader.Propose(ctx, ticker, plan)
	if err != nil {
		return nil, g.stageFailed("trader", err)
	}

	riskSpeakers := make([]Speaker, 0, len(g.riskDebaters))
	for _, d := range g.riskDebaters {
		riskSpeakers = append(riskSpeakers, riskSpeaker{d})
	}
	riskCtl := NewController("risk_discussion", riskSpeakers,
		g.cfg.Rounds.MaxRiskDiscussRounds, g.riskConverged, guard)
	risk, err := riskCtl.Run(ctx, traderPlan)
	if err != nil {
		return nil, g.stageFailed("risk_discussion", err)
	}

	if err := guard.Enter("risk_judge"); err != nil {
		return nil, err
	}
	decision, err := g.riskJudge.Decide(ctx, traderPlan, risk.Transcript())
	if err != nil {
		return nil, g.stageFailed("risk_judge", err)
	}
	if err := risk.Finalize(); err != nil {
		return nil, err
	}

	record := &DecisionRecord{
		ID:             uuid.NewString(),
		Ticker:         ticker,
		TradeDate:      date,
		Action:         ExtractSignal(decision),
		Rationale:      decision,
		InvestmentPlan: plan,
		TraderPlan:     traderPlan,
		AnalystReports: reports,
		DebateState:    debate,
		RiskState:      risk,
		CreatedAt:      time.Now().UTC(),
	}

	g.log.Infow("Run complete", "ticker", ticker, "action", record.Action,
		"debate_rounds", debate.Rounds(), "risk_rounds", risk.Rounds(),
		"stage_entries", guard.Entries())
	return record, nil
}

// runAnalysts produces every analyst report. Data unavailability aborts the
// run; the debate never reasons over partial evidence.
func (g *Graph) runAnalysts(ctx context.Context, guard *RecursionGuard, ticker, date string) (map[string]string, string, error) {
	reports := make(map[string]string, len(g.analysts))
	var combined strings.Builder

	for _, analyst := range g.analysts {
		role := string(analyst.Role())
		if err := guard.Enter("analyst/" + role); err != nil {
			return nil, "", err
		}
		report, err := analyst.Report(ctx, ticker, date)
		if err != nil {
			return nil, "", g.stageFailed("analyst/"+role, err)
		}
		reports[role] = report
		combined.WriteString("## " + role + "\n" + report + "\n\n")
	}

	return reports, combined.String(), nil
}

// stageFailed tags an error with the furthest stage reached. Errors outside
// the run taxonomy are classified as orchestration failures.
func (g *Graph) stageFailed(stage string, err error) error {
	g.log.Errorw("Stage failed", "stage", stage, "error", err)
	if !errors.Is(err, errors.ErrConfiguration) &&
		!errors.Is(err, errors.ErrDataUnavailable) &&
		!errors.Is(err, errors.ErrRecursionLimit) &&
		!errors.Is(err, errors.ErrInvalidInput) {
		err = fmt.Errorf("%w: %w", errors.ErrOrchestration, err)
	}
	return errors.NewStageError(stage, err)
}
