package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/topology"
	"dev.quorum.council/internal/voting"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "balanced", cfg.DefaultProfile)
	assert.Contains(t, cfg.Profiles, "quick")
	assert.Contains(t, cfg.Profiles, "thorough")
	assert.Contains(t, cfg.Profiles, "off")
}

func TestLoad_FileOverridesAndKeepsBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quorum.yaml")
	doc := `
default_profile: deep-dive
profiles:
  deep-dive:
    name: deep-dive
    rounds: 4
    topology: panel
    voting_method: irv
    adaptive_preset: thorough
providers:
  claude:
    context_window: 200000
    reserved_output: 8192
    reserved_reasoning: 16384
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.ProfileByName("")
	require.NoError(t, err)
	assert.Equal(t, "deep-dive", p.Name)
	assert.Equal(t, 4, p.Rounds)
	assert.Equal(t, topology.TypePanel, p.Topology)
	assert.Equal(t, voting.MethodIRV, p.VotingMethod)
	assert.Equal(t, adaptive.PresetThorough, p.AdaptivePreset)

	// Built-ins survive a user file that does not redefine them.
	_, err = cfg.ProfileByName("quick")
	assert.NoError(t, err)

	assert.Equal(t, 200000, cfg.Providers["claude"].ContextWindow)
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiles: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestProfileByName_UnknownProfileFails(t *testing.T) {
	cfg := DefaultFile()
	_, err := cfg.ProfileByName("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestLoadEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestAvailableProviders_FiltersByCredential(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "key")
	t.Setenv("OPENAI_API_KEY", "")

	got := AvailableProviders([]string{"claude", "gpt", "local-llama"})
	assert.Equal(t, []string{"claude", "local-llama"}, got)
}
