package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/budget"
	"dev.quorum.council/internal/integrity"
	"dev.quorum.council/internal/provider"
	"dev.quorum.council/internal/topology"
	"dev.quorum.council/internal/voting"
)

// Store persists session artifacts. Implementations must write
// atomically; the orchestrator calls it from the single-threaded phase
// loop only.
type Store interface {
	SaveSession(s *Session) error
	SavePhase(sessionID string, seq int, output PhaseOutput) error
	SaveSynthesis(sessionID string, s Synthesis) error
	SaveIntegrity(sessionID string, entries []integrity.Entry) error
	SaveDecisions(sessionID string, decisions []adaptive.Decision) error
}

// nopStore is used when no store is configured (tests, dry runs).
type nopStore struct{}

func (nopStore) SaveSession(*Session) error                      { return nil }
func (nopStore) SavePhase(string, int, PhaseOutput) error        { return nil }
func (nopStore) SaveSynthesis(string, Synthesis) error           { return nil }
func (nopStore) SaveIntegrity(string, []integrity.Entry) error   { return nil }
func (nopStore) SaveDecisions(string, []adaptive.Decision) error { return nil }

// Config tunes one orchestrator.
type Config struct {
	SystemPrompt string
	VoteMethod   voting.Method
	VoteConfig   voting.Config
	Adaptive     adaptive.Config
	Logger       *logrus.Logger
}

// DefaultConfig returns Borda voting with balanced adaptation.
func DefaultConfig() Config {
	return Config{
		VoteMethod: voting.MethodBorda,
		Adaptive:   adaptive.DefaultConfig(),
		Logger:     logrus.New(),
	}
}

// Orchestrator is the deliberation state machine. Phase transitions are
// strictly sequential; only the participant calls inside a parallel
// phase run concurrently.
type Orchestrator struct {
	registry *provider.Registry
	budgets  *budget.Manager
	store    Store
	config   Config
	log      *logrus.Entry
}

// New creates an orchestrator. A nil store disables persistence.
func New(registry *provider.Registry, budgets *budget.Manager, store Store, config Config) *Orchestrator {
	if store == nil {
		store = nopStore{}
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}
	if config.VoteMethod == "" {
		config.VoteMethod = voting.MethodBorda
	}
	return &Orchestrator{
		registry: registry,
		budgets:  budgets,
		store:    store,
		config:   config,
		log:      config.Logger.WithField("component", "engine"),
	}
}

// Outcome is everything one deliberation produced.
type Outcome struct {
	Session   *Session            `json:"session"`
	Phases    []PhaseOutput       `json:"phases"`
	Decisions []adaptive.Decision `json:"decisions"`
	Vote      *voting.Result      `json:"vote,omitempty"`
	Synthesis Synthesis           `json:"synthesis"`
	Chain     []integrity.Entry   `json:"chain"`
}

// Run executes the plan for the session's question. Participant
// failures degrade to fallback responses; only persistence and context
// cancellation abort the run.
func (o *Orchestrator) Run(ctx context.Context, session *Session, plan topology.Plan) (*Outcome, error) {
	if err := o.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("engine: save session: %w", err)
	}

	controller := adaptive.NewController(o.config.Adaptive)
	chain := integrity.NewChain()
	phases := append([]topology.Phase(nil), plan.Phases...)
	var executed []PhaseOutput
	lastGood := make(map[string]string)

	i := 0
	for i < len(phases) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("engine: phase loop: %w", err)
		}
		phase := phases[i]
		o.log.WithFields(logrus.Fields{
			"phase":        phase.Name,
			"kind":         phase.Kind,
			"participants": len(phase.Participants),
			"parallel":     phase.Parallel,
		}).Info("phase starting")

		output := o.executePhase(ctx, session, phase, executed, lastGood)
		executed = append(executed, output)

		if err := o.store.SavePhase(session.ID, len(executed), output); err != nil {
			return nil, fmt.Errorf("engine: persist phase %s: %w", phase.Name, err)
		}
		if _, err := chain.Append(phase.Name, output); err != nil {
			return nil, fmt.Errorf("engine: chain phase %s: %w", phase.Name, err)
		}
		o.log.WithFields(logrus.Fields{
			"phase":    phase.Name,
			"duration": output.Duration,
		}).Info("phase complete")

		if !phase.Kind.AdaptationEligible() {
			i++
			continue
		}

		decision := controller.Evaluate(phase, output.Responses(), phases[i+1:])
		o.log.WithFields(logrus.Fields{
			"phase":   phase.Name,
			"action":  decision.Action,
			"entropy": decision.Entropy,
			"reason":  decision.Reason,
		}).Info("adaptive decision")

		switch decision.Action {
		case adaptive.ActionSkipTo:
			i = phaseIndex(phases, decision.Target)
			if i < 0 {
				i = len(phases)
			}
		case adaptive.ActionDone:
			i = len(phases)
		case adaptive.ActionAddRound:
			inserted := phase
			inserted.Name = decision.InsertedPhase
			phases = append(phases[:i+1], append([]topology.Phase{inserted}, phases[i+1:]...)...)
			i++
		default:
			i++
		}
	}

	vote := o.tallyVote(session, plan, executed)
	synthesis, err := o.synthesize(ctx, session, plan, executed, vote, lastGood)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.CompletedAt = &now

	decisions := controller.Log()
	if err := o.store.SaveSynthesis(session.ID, synthesis); err != nil {
		return nil, fmt.Errorf("engine: persist synthesis: %w", err)
	}
	if err := o.store.SaveIntegrity(session.ID, chain.Entries()); err != nil {
		return nil, fmt.Errorf("engine: persist integrity chain: %w", err)
	}
	if err := o.store.SaveDecisions(session.ID, decisions); err != nil {
		return nil, fmt.Errorf("engine: persist decisions: %w", err)
	}
	if err := o.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("engine: finalize session: %w", err)
	}

	return &Outcome{
		Session:   session,
		Phases:    executed,
		Decisions: decisions,
		Vote:      vote,
		Synthesis: synthesis,
		Chain:     chain.Entries(),
	}, nil
}

// executePhase runs every participant call for one phase. Parallel
// phases fan out; each call gets its own immutable view of history, so
// the workers share nothing and write only their own result slot.
// Sequential phases extend the history with the entries produced so far
// in this phase, which is what lets a pipeline step read its
// predecessors.
func (o *Orchestrator) executePhase(ctx context.Context, session *Session, phase topology.Phase, history []PhaseOutput, lastGood map[string]string) PhaseOutput {
	start := time.Now().UTC()
	entries := make([]ResponseEntry, len(phase.Participants))

	if phase.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for idx, name := range phase.Participants {
			idx, name := idx, name
			g.Go(func() error {
				entries[idx] = o.callParticipant(gctx, session, phase, name, history, lastGood[name])
				return nil
			})
		}
		// Workers never return errors; failures become fallback entries.
		_ = g.Wait()
	} else {
		current := PhaseOutput{Phase: phase.Name, Kind: phase.Kind}
		for idx, name := range phase.Participants {
			view := append(append([]PhaseOutput(nil), history...), current)
			entries[idx] = o.callParticipant(ctx, session, phase, name, view, lastGood[name])
			current.Entries = append(current.Entries, entries[idx])
		}
	}

	for _, e := range entries {
		if !e.Fallback && e.Text != "" {
			lastGood[e.Provider] = e.Text
		}
	}

	return PhaseOutput{
		Phase:     phase.Name,
		Kind:      phase.Kind,
		Entries:   entries,
		StartedAt: start,
		Duration:  time.Since(start),
	}
}

// callParticipant performs one provider call, substituting the fallback
// text on failure. A failed call never halts the session.
func (o *Orchestrator) callParticipant(ctx context.Context, session *Session, phase topology.Phase, name string, history []PhaseOutput, fallback string) ResponseEntry {
	gw, err := o.registry.Get(name)
	if err != nil {
		o.log.WithFields(logrus.Fields{"phase": phase.Name, "provider": name}).
			WithError(err).Warn("provider unavailable, using fallback")
		return fallbackEntry(name, fallback, "provider_unavailable")
	}

	available := o.budgets.Available(name, o.config.SystemPrompt)
	var prompt string
	if phase.Kind == topology.KindVote {
		prompt = votePrompt(session.Question, session.Providers, finalPositions(history, session.Providers), available)
	} else {
		prompt = buildPrompt(session.Question, phase, name, history, available)
	}

	resp, err := gw.Generate(ctx, provider.Request{
		Prompt:       prompt,
		SystemPrompt: o.config.SystemPrompt,
	})
	if err != nil {
		o.log.WithFields(logrus.Fields{"phase": phase.Name, "provider": name}).
			WithError(err).Warn("generation failed, using fallback")
		return fallbackEntry(name, fallback, "generation_failed")
	}

	return ResponseEntry{
		Provider: name,
		Text:     resp.Text,
		Partial:  resp.Partial,
	}
}

func fallbackEntry(name, fallback, cause string) ResponseEntry {
	return ResponseEntry{
		Provider: name,
		Text:     fallback,
		Fallback: true,
		Cause:    cause,
	}
}

// tallyVote parses ballots from the executed vote phase and tallies
// them. Plans without voting, skipped vote phases, and empty ballot sets
// all yield nil.
func (o *Orchestrator) tallyVote(session *Session, plan topology.Plan, executed []PhaseOutput) *voting.Result {
	if !plan.RequiresVoting {
		return nil
	}
	var voteOutput *PhaseOutput
	for i := len(executed) - 1; i >= 0; i-- {
		if executed[i].Kind == topology.KindVote {
			voteOutput = &executed[i]
			break
		}
	}
	if voteOutput == nil {
		return nil
	}

	ballots := parseBallots(*voteOutput, session.Providers)
	if len(ballots) == 0 {
		o.log.Warn("vote phase produced no parseable ballots")
		return nil
	}

	result, err := voting.Tally(o.config.VoteMethod, ballots, session.Providers, o.config.VoteConfig)
	if err != nil {
		o.log.WithError(err).Warn("ballot tally failed")
		return nil
	}
	o.log.WithFields(logrus.Fields{
		"method":        result.Method,
		"winner":        result.Winner,
		"controversial": result.Controversial,
	}).Info("vote tallied")
	return result
}

// synthesize asks the designated synthesizer for the final answer. When
// the synthesizer itself fails, the vote winner's final position stands
// in.
func (o *Orchestrator) synthesize(ctx context.Context, session *Session, plan topology.Plan, executed []PhaseOutput, vote *voting.Result, lastGood map[string]string) (Synthesis, error) {
	finals := finalPositions(executed, session.Providers)
	synthesizer := resolveSynthesizer(plan, session.Providers, vote)

	text := ""
	if gw, err := o.registry.Get(synthesizer); err == nil {
		available := o.budgets.Available(synthesizer, o.config.SystemPrompt)
		prompt := synthesisPrompt(session.Question, session.Providers, finals, voteSummary(vote), available)
		resp, genErr := gw.Generate(ctx, provider.Request{
			Prompt:       prompt,
			SystemPrompt: o.config.SystemPrompt,
		})
		if genErr != nil {
			o.log.WithField("provider", synthesizer).WithError(genErr).
				Warn("synthesis call failed, falling back to best final position")
		} else {
			text = resp.Text
		}
	}
	if text == "" {
		best := synthesizer
		if vote != nil && vote.Winner != "" {
			best = vote.Winner
		}
		text = finals[best]
		if text == "" {
			text = lastGood[best]
		}
	}

	consensus := consensusScore(finals)
	return Synthesis{
		SessionID:      session.ID,
		Synthesizer:    synthesizer,
		Text:           text,
		Consensus:      consensus,
		Confidence:     confidenceScore(consensus, vote),
		MinorityReport: minorityReport(finals, vote),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// finalPositions returns each provider's most recent substantive text,
// skipping vote and judging phases.
func finalPositions(executed []PhaseOutput, providers []string) map[string]string {
	finals := make(map[string]string, len(providers))
	for _, output := range executed {
		if output.Kind == topology.KindVote || output.Kind == topology.KindJudging {
			continue
		}
		for _, e := range output.Entries {
			if e.Text != "" {
				finals[e.Provider] = e.Text
			}
		}
	}
	return finals
}

func phaseIndex(phases []topology.Phase, name string) int {
	for i, p := range phases {
		if p.Name == name {
			return i
		}
	}
	return -1
}
