package adaptive

import (
	"fmt"
	"time"

	"dev.quorum.council/internal/topology"
)

// Action is the controller's verdict after a completed phase.
type Action string

const (
	ActionContinue Action = "continue"
	ActionSkipTo   Action = "skip_to"
	ActionAddRound Action = "add_round"
	ActionDone     Action = "done"
)

// Preset names a tuned threshold bundle.
type Preset string

const (
	PresetOff      Preset = "off"
	PresetQuick    Preset = "quick"
	PresetBalanced Preset = "balanced"
	PresetThorough Preset = "thorough"
)

// Decision records one adaptation verdict. Decisions are appended to the
// session's decision log in phase-execution order.
type Decision struct {
	Phase         string    `json:"phase"`
	Action        Action    `json:"action"`
	Target        string    `json:"target,omitempty"`
	InsertedPhase string    `json:"inserted_phase,omitempty"`
	SkippedPhases []string  `json:"skipped_phases,omitempty"`
	Entropy       float64   `json:"entropy"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}

// Config tunes the controller. NeverSkip phases are protected: no skip
// decision may jump over them, whatever the entropy says.
type Config struct {
	Preset            Preset   `json:"preset" yaml:"preset"`
	SkipThreshold     float64  `json:"skip_threshold" yaml:"skip_threshold"`
	AddRoundThreshold float64  `json:"add_round_threshold" yaml:"add_round_threshold"`
	MaxExtraRounds    int      `json:"max_extra_rounds" yaml:"max_extra_rounds"`
	NeverSkip         []string `json:"never_skip,omitempty" yaml:"never_skip,omitempty"`
}

// DefaultConfig returns the balanced preset.
func DefaultConfig() Config {
	return PresetConfig(PresetBalanced)
}

// PresetConfig maps a preset name to its thresholds. Unknown presets fall
// back to balanced. The values were tuned by observation, not derivation.
func PresetConfig(p Preset) Config {
	switch p {
	case PresetOff:
		return Config{Preset: PresetOff}
	case PresetQuick:
		return Config{Preset: PresetQuick, SkipThreshold: 0.40, AddRoundThreshold: 0.85, MaxExtraRounds: 0}
	case PresetThorough:
		return Config{Preset: PresetThorough, SkipThreshold: 0.15, AddRoundThreshold: 0.60, MaxExtraRounds: 2}
	default:
		return Config{Preset: PresetBalanced, SkipThreshold: 0.30, AddRoundThreshold: 0.70, MaxExtraRounds: 1}
	}
}

// Controller holds the mutable adaptation state for one session: how many
// extra rounds have been granted and every decision taken so far. It is
// driven by the single-threaded phase loop and carries no lock.
type Controller struct {
	config       Config
	extraRounds  int
	rebuttalUsed bool
	log          []Decision
}

// NewController creates a controller with the given configuration.
func NewController(config Config) *Controller {
	return &Controller{config: config}
}

// Log returns the decisions taken so far, in order.
func (c *Controller) Log() []Decision {
	out := make([]Decision, len(c.log))
	copy(out, c.log)
	return out
}

// ExtraRounds returns how many extra rounds this controller has granted.
func (c *Controller) ExtraRounds() int {
	return c.extraRounds
}

// Evaluate scores the completed phase's responses and decides what the
// pipeline should do next. The remaining slice is the planned phases not
// yet executed, in order.
func (c *Controller) Evaluate(completed topology.Phase, responses map[string]string, remaining []topology.Phase) Decision {
	entropy := Entropy(responses)

	if c.config.Preset == PresetOff {
		return c.record(completed, Decision{
			Action:  ActionContinue,
			Entropy: entropy,
			Reason:  "adaptation disabled",
		})
	}
	if !completed.Kind.AdaptationEligible() {
		return c.record(completed, Decision{
			Action:  ActionContinue,
			Entropy: entropy,
			Reason:  fmt.Sprintf("%s phases are not adaptation points", completed.Kind),
		})
	}

	switch completed.Kind {
	case topology.KindInitial:
		if entropy < c.config.SkipThreshold {
			if d, ok := c.skipToResolution(entropy, remaining); ok {
				return c.record(completed, d)
			}
		}
	case topology.KindDebate:
		if entropy < c.config.SkipThreshold+0.1 {
			if d, ok := c.skipToResolution(entropy, remaining); ok {
				return c.record(completed, d)
			}
		}
		if entropy > c.config.AddRoundThreshold && c.extraRounds < c.config.MaxExtraRounds {
			c.extraRounds++
			return c.record(completed, Decision{
				Action:        ActionAddRound,
				InsertedPhase: fmt.Sprintf("extra_debate_%d", c.extraRounds),
				Entropy:       entropy,
				Reason: fmt.Sprintf("entropy %.2f above %.2f, granting extra debate round %d of %d",
					entropy, c.config.AddRoundThreshold, c.extraRounds, c.config.MaxExtraRounds),
			})
		}
	case topology.KindAdjustment:
		// Disagreement that survives adjustment gets one rebuttal round.
		// The rebuttal has its own one-shot allowance, separate from the
		// debate extra-round budget, so it can fire even when that budget
		// is zero or spent.
		if entropy > c.config.AddRoundThreshold && !c.rebuttalUsed {
			c.rebuttalUsed = true
			return c.record(completed, Decision{
				Action:        ActionAddRound,
				InsertedPhase: "rebuttal",
				Entropy:       entropy,
				Reason: fmt.Sprintf("entropy %.2f persists after adjustment, inserting rebuttal round",
					entropy),
			})
		}
	}

	return c.record(completed, Decision{
		Action:  ActionContinue,
		Entropy: entropy,
		Reason:  fmt.Sprintf("entropy %.2f inside the planned-execution band", entropy),
	})
}

// skipToResolution builds a skip decision jumping over the remaining
// intermediate phases to the vote phase, or straight to synthesis when
// the plan has no vote. The skip is refused when a protected phase would
// be jumped over.
func (c *Controller) skipToResolution(entropy float64, remaining []topology.Phase) (Decision, bool) {
	target := ""
	var skipped []string
	for _, p := range remaining {
		if p.Kind == topology.KindVote {
			target = p.Name
			break
		}
		skipped = append(skipped, p.Name)
	}

	for _, name := range skipped {
		if c.isProtected(name) {
			return Decision{}, false
		}
	}
	if len(skipped) == 0 {
		// Nothing to jump over; continuing is the same thing.
		return Decision{}, false
	}

	if target == "" {
		return Decision{
			Action:        ActionDone,
			SkippedPhases: skipped,
			Entropy:       entropy,
			Reason: fmt.Sprintf("entropy %.2f shows consensus, skipping %d phases straight to synthesis",
				entropy, len(skipped)),
		}, true
	}
	return Decision{
		Action:        ActionSkipTo,
		Target:        target,
		SkippedPhases: skipped,
		Entropy:       entropy,
		Reason: fmt.Sprintf("entropy %.2f shows consensus, skipping %d phases to %s",
			entropy, len(skipped), target),
	}, true
}

func (c *Controller) isProtected(phase string) bool {
	for _, p := range c.config.NeverSkip {
		if p == phase {
			return true
		}
	}
	return false
}

func (c *Controller) record(completed topology.Phase, d Decision) Decision {
	d.Phase = completed.Name
	d.Timestamp = time.Now().UTC()
	c.log = append(c.log, d)
	return d
}
