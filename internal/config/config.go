// Package config loads deliberation profiles and provider settings from
// YAML, plus credential hints from a .env file. The engine only reads
// which API keys are present; the provider clients that use them live
// outside this module.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/budget"
	"dev.quorum.council/internal/topology"
	"dev.quorum.council/internal/voting"
)

// Profile bundles the tunable knobs of one deliberation style.
type Profile struct {
	Name           string          `yaml:"name" json:"name"`
	Rounds         int             `yaml:"rounds" json:"rounds"`
	Topology       topology.Type   `yaml:"topology" json:"topology"`
	VotingMethod   voting.Method   `yaml:"voting_method" json:"voting_method"`
	AdaptivePreset adaptive.Preset `yaml:"adaptive_preset" json:"adaptive_preset"`
	// FocusAreas steer the challenge prompts (correctness, edge cases,
	// performance, and so on).
	FocusAreas []string `yaml:"focus_areas,omitempty" json:"focus_areas,omitempty"`
	// ChallengeStyle is how aggressively providers are told to attack
	// each other's answers.
	ChallengeStyle string `yaml:"challenge_style,omitempty" json:"challenge_style,omitempty"`
}

// File is the on-disk configuration document.
type File struct {
	DefaultProfile string                   `yaml:"default_profile"`
	Profiles       map[string]Profile       `yaml:"profiles"`
	Providers      map[string]budget.Limits `yaml:"providers,omitempty"`
	Topology       topology.Config          `yaml:"topology,omitempty"`
}

// DefaultProfiles returns the built-in profile set.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"quick": {
			Name:           "quick",
			Rounds:         1,
			Topology:       topology.TypeMesh,
			VotingMethod:   voting.MethodBorda,
			AdaptivePreset: adaptive.PresetQuick,
			ChallengeStyle: "direct",
		},
		"balanced": {
			Name:           "balanced",
			Rounds:         2,
			Topology:       topology.TypeMesh,
			VotingMethod:   voting.MethodBorda,
			AdaptivePreset: adaptive.PresetBalanced,
			FocusAreas:     []string{"correctness", "completeness"},
			ChallengeStyle: "constructive",
		},
		"thorough": {
			Name:           "thorough",
			Rounds:         3,
			Topology:       topology.TypeMesh,
			VotingMethod:   voting.MethodCondorcet,
			AdaptivePreset: adaptive.PresetThorough,
			FocusAreas:     []string{"correctness", "completeness", "edge cases", "tradeoffs"},
			ChallengeStyle: "adversarial",
		},
		"off": {
			Name:           "off",
			Rounds:         1,
			Topology:       topology.TypeMesh,
			VotingMethod:   voting.MethodBorda,
			AdaptivePreset: adaptive.PresetOff,
		},
	}
}

// DefaultFile returns the configuration used when no file is present.
func DefaultFile() File {
	return File{
		DefaultProfile: "balanced",
		Profiles:       DefaultProfiles(),
	}
}

// Load reads a YAML configuration file and fills gaps from the
// defaults. A missing file is not an error; the defaults are returned.
func Load(path string) (File, error) {
	cfg := DefaultFile()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return File{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return File{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// User files may define a subset; built-in profiles stay reachable.
	for name, p := range DefaultProfiles() {
		if _, ok := cfg.Profiles[name]; !ok {
			if cfg.Profiles == nil {
				cfg.Profiles = make(map[string]Profile)
			}
			cfg.Profiles[name] = p
		}
	}
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = "balanced"
	}
	return cfg, nil
}

// ProfileByName resolves a profile, falling back to the default profile
// for an empty name.
func (f File) ProfileByName(name string) (Profile, error) {
	if name == "" {
		name = f.DefaultProfile
	}
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("config: unknown profile %q", name)
	}
	return p, nil
}

// credentialEnvKeys are the provider API key variables the engine checks
// for when deciding which providers look usable.
var credentialEnvKeys = map[string]string{
	"claude":   "ANTHROPIC_API_KEY",
	"gpt":      "OPENAI_API_KEY",
	"gemini":   "GEMINI_API_KEY",
	"mistral":  "MISTRAL_API_KEY",
	"deepseek": "DEEPSEEK_API_KEY",
}

// LoadEnv loads a .env file into the process environment. A missing
// file is fine; explicit environment variables always win because
// godotenv never overwrites existing values.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("config: load env %s: %w", path, err)
	}
	return nil
}

// AvailableProviders reports which known providers have a credential set
// in the environment, preserving the order of the requested list.
func AvailableProviders(requested []string) []string {
	available := make([]string, 0, len(requested))
	for _, name := range requested {
		key, known := credentialEnvKeys[name]
		if !known || os.Getenv(key) != "" {
			available = append(available, name)
		}
	}
	return available
}
