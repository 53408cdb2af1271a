package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"tradingagents/pkg/errors"
)

// Config is the immutable per-run configuration snapshot. It is created once
// from defaults overlaid with environment variables and programmatic options,
// and every pipeline stage reads the same instance. Unknown environment keys
// are ignored; missing keys fall back to the documented defaults.
type Config struct {
	App           AppConfig
	LLM           LLMConfig
	Embedding     EmbeddingConfig
	Rounds        RoundsConfig
	Tools         ToolsConfig
	Paths         PathsConfig
	Keys          KeysConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"TRADINGAGENTS_APP_NAME" default:"tradingagents"`
	Env      string `envconfig:"TRADINGAGENTS_ENV" default:"development"`
	LogLevel string `envconfig:"TRADINGAGENTS_LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"TRADINGAGENTS_DEBUG" default:"false"`
}

type LLMConfig struct {
	Provider        string `envconfig:"TRADINGAGENTS_LLM_PROVIDER" default:"openai"`
	BackendURL      string `envconfig:"TRADINGAGENTS_BACKEND_URL"`
	DeepThinkModel  string `envconfig:"TRADINGAGENTS_DEEP_THINK_MODEL" default:"o4-mini"`
	QuickThinkModel string `envconfig:"TRADINGAGENTS_QUICK_THINK_MODEL" default:"gpt-4o-mini"`
}

type EmbeddingConfig struct {
	Provider   string `envconfig:"TRADINGAGENTS_EMBEDDING_PROVIDER" default:"openai"`
	Model      string `envconfig:"TRADINGAGENTS_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	BackendURL string `envconfig:"TRADINGAGENTS_EMBEDDING_BACKEND_URL"`
}

type RoundsConfig struct {
	MaxDebateRounds      int `envconfig:"TRADINGAGENTS_MAX_DEBATE_ROUNDS" default:"1"`
	MaxRiskDiscussRounds int `envconfig:"TRADINGAGENTS_MAX_RISK_DISCUSS_ROUNDS" default:"1"`
	MaxRecurLimit        int `envconfig:"TRADINGAGENTS_MAX_RECUR_LIMIT" default:"100"`
}

type ToolsConfig struct {
	Online bool `envconfig:"TRADINGAGENTS_ONLINE_TOOLS" default:"true"`
}

type PathsConfig struct {
	ResultsDir   string `envconfig:"TRADINGAGENTS_RESULTS_DIR" default:"./results"`
	DataCacheDir string `envconfig:"TRADINGAGENTS_DATA_CACHE_DIR" default:"./data_cache"`
}

// KeysConfig holds provider credentials resolved at process startup.
// The core never reads the environment directly; bindings that require a
// key fail at resolve time when the key was never supplied.
type KeysConfig struct {
	OpenAI    string `envconfig:"OPENAI_API_KEY"`
	Google    string `envconfig:"GOOGLE_API_KEY"`
	Anthropic string `envconfig:"ANTHROPIC_API_KEY"`
	Finnhub   string `envconfig:"FINNHUB_API_KEY"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"TRADINGAGENTS_ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Option overlays a programmatic override on the loaded configuration.
type Option func(*Config)

func WithLLMProvider(provider string) Option {
	return func(c *Config) { c.LLM.Provider = provider }
}

func WithBackendURL(url string) Option {
	return func(c *Config) { c.LLM.BackendURL = url }
}

func WithDeepThinkModel(model string) Option {
	return func(c *Config) { c.LLM.DeepThinkModel = model }
}

func WithQuickThinkModel(model string) Option {
	return func(c *Config) { c.LLM.QuickThinkModel = model }
}

func WithEmbeddingProvider(provider string) Option {
	return func(c *Config) { c.Embedding.Provider = provider }
}

func WithEmbeddingModel(model string) Option {
	return func(c *Config) { c.Embedding.Model = model }
}

func WithEmbeddingBackendURL(url string) Option {
	return func(c *Config) { c.Embedding.BackendURL = url }
}

func WithMaxDebateRounds(n int) Option {
	return func(c *Config) { c.Rounds.MaxDebateRounds = n }
}

func WithMaxRiskDiscussRounds(n int) Option {
	return func(c *Config) { c.Rounds.MaxRiskDiscussRounds = n }
}

func WithMaxRecurLimit(n int) Option {
	return func(c *Config) { c.Rounds.MaxRecurLimit = n }
}

func WithOnlineTools(online bool) Option {
	return func(c *Config) { c.Tools.Online = online }
}

func WithDataCacheDir(dir string) Option {
	return func(c *Config) { c.Paths.DataCacheDir = dir }
}

func WithResultsDir(dir string) Option {
	return func(c *Config) { c.Paths.ResultsDir = dir }
}

// Load reads configuration from environment variables and applies overrides.
// It first tries to load a .env file (useful for local development).
func Load(opts ...Option) (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the documented defaults without consulting the environment.
func Default() Config {
	return Config{
		App: AppConfig{Name: "tradingagents", Env: "development", LogLevel: "info"},
		LLM: LLMConfig{
			Provider:        "openai",
			DeepThinkModel:  "o4-mini",
			QuickThinkModel: "gpt-4o-mini",
		},
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Rounds: RoundsConfig{
			MaxDebateRounds:      1,
			MaxRiskDiscussRounds: 1,
			MaxRecurLimit:        100,
		},
		Tools: ToolsConfig{Online: true},
		Paths: PathsConfig{
			ResultsDir:   "./results",
			DataCacheDir: "./data_cache",
		},
	}
}

// Validate checks structural invariants that would otherwise surface deep
// inside a run.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return errors.Wrap(errors.ErrConfiguration, "llm provider is empty")
	}
	if c.Rounds.MaxDebateRounds < 1 {
		return errors.Wrapf(errors.ErrConfiguration, "max_debate_rounds must be >= 1, got %d", c.Rounds.MaxDebateRounds)
	}
	if c.Rounds.MaxRiskDiscussRounds < 1 {
		return errors.Wrapf(errors.ErrConfiguration, "max_risk_discuss_rounds must be >= 1, got %d", c.Rounds.MaxRiskDiscussRounds)
	}
	if c.Rounds.MaxRecurLimit < 1 {
		return errors.Wrapf(errors.ErrConfiguration, "max_recur_limit must be >= 1, got %d", c.Rounds.MaxRecurLimit)
	}
	return nil
}
