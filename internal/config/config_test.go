package config

import (
	"os"
	"testing"

	"github.com/obelus-labs/veritas/internal/model"
	"github.com/obelus-labs/veritas/internal/router"
	"github.com/obelus-labs/veritas/internal/scorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexiconConfigLoadDefaultsWhenPathEmpty(t *testing.T) {
	lc := LexiconConfig{}
	lex, err := lc.Load()
	require.NoError(t, err)
	assert.True(t, lex.IsAssertionVerb("said"))
}

func TestScorerConfigToWeightsOverlaysOnlyNonZeroFields(t *testing.T) {
	defaults := scorer.DefaultWeights()
	sc := ScorerConfig{SupportedMinScore: 90}

	got := sc.ToWeights()
	assert.Equal(t, 90.0, got.SupportedMinScore)
	assert.Equal(t, defaults.TokenOverlap, got.TokenOverlap)
	assert.Equal(t, defaults.PartialMinScore, got.PartialMinScore)
}

func TestRouterConfigToRouterConfigOverlaysCap(t *testing.T) {
	rc := RouterConfig{Cap: 2}
	got := rc.ToRouterConfig()
	assert.Equal(t, 2, got.Cap)
	assert.Equal(t, router.DefaultConfig().CategoryDefaults, got.CategoryDefaults)
}

func TestRouterConfigToRouterConfigOverridesCategoryDefaults(t *testing.T) {
	rc := RouterConfig{
		CategoryDefaults: map[string][]string{
			"finance": {"sec_edgar"},
		},
	}
	got := rc.ToRouterConfig()
	assert.Equal(t, []router.SourceID{"sec_edgar"}, got.CategoryDefaults[model.CategoryFinance])
}

func TestConfigToAdapterOverridesResolvesAPIKeyEnv(t *testing.T) {
	t.Setenv("TEST_VERITAS_API_KEY", "secret-value")
	cfg := Config{
		Adapters: map[string]AdapterEntry{
			"sec_edgar": {BaseURL: "https://example.test/sec", APIKeyEnv: "TEST_VERITAS_API_KEY", TimeoutS: 5, RateLimitRPS: 2, RateLimitBurst: 3},
		},
	}

	overrides := cfg.ToAdapterOverrides()
	require.Contains(t, overrides, "sec_edgar")
	o := overrides["sec_edgar"]
	assert.Equal(t, "https://example.test/sec", o.BaseURL)
	assert.Equal(t, "secret-value", o.APIKey)
	assert.Equal(t, 5.0, o.TimeoutS)
	assert.Equal(t, 2.0, o.RateLimitRPS)
	assert.Equal(t, 3, o.RateLimitBurst)
}

func TestConfigToAdapterOverridesNilWhenEmpty(t *testing.T) {
	cfg := Config{}
	assert.Nil(t, cfg.ToAdapterOverrides())
}

func TestLoadConfigAppliesDefaultsAndValidates(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	require.NoError(t, err)
	_, err = f.WriteString("store:\n  backend: memory\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	cfg, err := LoadConfig(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 4, cfg.Orchestrator.FanoutConcurrency)
	assert.Equal(t, 1.0, cfg.RateLimit.RequestsPerSecond)
}
