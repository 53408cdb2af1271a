package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradingagents/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "o4-mini", cfg.LLM.DeepThinkModel)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.QuickThinkModel)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 1, cfg.Rounds.MaxDebateRounds)
	assert.Equal(t, 1, cfg.Rounds.MaxRiskDiscussRounds)
	assert.Equal(t, 100, cfg.Rounds.MaxRecurLimit)
	assert.True(t, cfg.Tools.Online)
	assert.Equal(t, "./results", cfg.Paths.ResultsDir)
	assert.Equal(t, "./data_cache", cfg.Paths.DataCacheDir)

	require.NoError(t, cfg.Validate())
}

func TestOptions_Overlay(t *testing.T) {
	cfg := Default()

	for _, opt := range []Option{
		WithLLMProvider("ollama"),
		WithDeepThinkModel("llama3.1:70b"),
		WithQuickThinkModel("llama3.1"),
		WithBackendURL("http://localhost:11434/v1"),
		WithMaxDebateRounds(3),
		WithMaxRiskDiscussRounds(2),
		WithMaxRecurLimit(50),
		WithOnlineTools(false),
		WithDataCacheDir("/tmp/cache"),
		WithResultsDir("/tmp/results"),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3.1:70b", cfg.LLM.DeepThinkModel)
	assert.Equal(t, "llama3.1", cfg.LLM.QuickThinkModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BackendURL)
	assert.Equal(t, 3, cfg.Rounds.MaxDebateRounds)
	assert.Equal(t, 2, cfg.Rounds.MaxRiskDiscussRounds)
	assert.Equal(t, 50, cfg.Rounds.MaxRecurLimit)
	assert.False(t, cfg.Tools.Online)
	assert.Equal(t, "/tmp/cache", cfg.Paths.DataCacheDir)
	assert.Equal(t, "/tmp/results", cfg.Paths.ResultsDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty provider", func(c *Config) { c.LLM.Provider = "" }},
		{"zero debate rounds", func(c *Config) { c.Rounds.MaxDebateRounds = 0 }},
		{"negative risk rounds", func(c *Config) { c.Rounds.MaxRiskDiscussRounds = -1 }},
		{"zero recursion limit", func(c *Config) { c.Rounds.MaxRecurLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrConfiguration), "want ErrConfiguration, got %v", err)
		})
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRADINGAGENTS_LLM_PROVIDER", "openrouter")
	t.Setenv("TRADINGAGENTS_MAX_DEBATE_ROUNDS", "2")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, 2, cfg.Rounds.MaxDebateRounds)
	assert.Equal(t, "sk-env", cfg.Keys.OpenAI)
}

func TestLoad_OptionsWinOverEnv(t *testing.T) {
	t.Setenv("TRADINGAGENTS_LLM_PROVIDER", "openrouter")

	cfg, err := Load(WithLLMProvider("ollama"))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
}
