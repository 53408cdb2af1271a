package ai

import (
	"strings"

	"tradingagents/internal/adapters/config"
	"tradingagents/pkg/errors"
)

// Known provider identifiers.
const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderGoogle     = "google"
	ProviderAnthropic  = "anthropic"
)

// ProviderBinding is the resolved client configuration for one role.
// It is a pure function of (role, config) and carries everything a client
// constructor needs: endpoint, model id, and credential requirement.
type ProviderBinding struct {
	Role        Role
	Provider    string
	Endpoint    string
	Model       string
	RequiresKey bool
	APIKey      string
}

type providerSpec struct {
	endpoint    string
	requiresKey bool
	key         func(config.KeysConfig) string
}

var providerSpecs = map[string]providerSpec{
	ProviderOpenAI: {
		endpoint:    "https://api.openai.com/v1",
		requiresKey: true,
		key:         func(k config.KeysConfig) string { return k.OpenAI },
	},
	// OpenRouter speaks the OpenAI wire format and reuses the OpenAI key slot.
	ProviderOpenRouter: {
		endpoint:    "https://openrouter.ai/api/v1",
		requiresKey: true,
		key:         func(k config.KeysConfig) string { return k.OpenAI },
	},
	ProviderOllama: {
		endpoint:    "http://localhost:11434/v1",
		requiresKey: false,
		key:         func(config.KeysConfig) string { return "" },
	},
	ProviderGoogle: {
		endpoint:    "https://generativelanguage.googleapis.com/v1beta/openai/",
		requiresKey: true,
		key:         func(k config.KeysConfig) string { return k.Google },
	},
	ProviderAnthropic: {
		endpoint:    "https://api.anthropic.com/v1",
		requiresKey: true,
		key:         func(k config.KeysConfig) string { return k.Anthropic },
	},
}

// NormalizeProviderName makes provider lookup more forgiving.
func NormalizeProviderName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Resolve maps a role and configuration to a ProviderBinding. It is pure and
// deterministic: same (role, config) always yields the same binding, and no
// network calls are performed. Model ids pass through verbatim; a malformed
// model name surfaces only at call time from the provider's own client.
//
// An explicitly set backend URL overrides the provider's endpoint template,
// which permits provider-agnostic endpoints (e.g. a local OpenAI-compatible
// server) under any provider label.
func Resolve(role Role, cfg config.Config) (ProviderBinding, error) {
	var (
		providerName string
		backendURL   string
		model        string
	)

	switch role {
	case RoleDeepThink:
		providerName = cfg.LLM.Provider
		backendURL = cfg.LLM.BackendURL
		model = cfg.LLM.DeepThinkModel
	case RoleQuickThink:
		providerName = cfg.LLM.Provider
		backendURL = cfg.LLM.BackendURL
		model = cfg.LLM.QuickThinkModel
	case RoleEmbedding:
		providerName = cfg.Embedding.Provider
		backendURL = cfg.Embedding.BackendURL
		model = cfg.Embedding.Model
	default:
		return ProviderBinding{}, errors.Wrapf(errors.ErrConfiguration, "unrecognized role %q", role)
	}

	providerName = NormalizeProviderName(providerName)
	if providerName == "" {
		return ProviderBinding{}, errors.Wrapf(errors.ErrConfiguration, "provider for role %s is empty", role)
	}

	spec, ok := providerSpecs[providerName]
	if !ok {
		return ProviderBinding{}, errors.Wrapf(errors.ErrConfiguration, "unknown provider %q for role %s", providerName, role)
	}

	if model == "" {
		return ProviderBinding{}, errors.Wrapf(errors.ErrConfiguration, "model for role %s is empty", role)
	}

	endpoint := spec.endpoint
	if backendURL != "" {
		endpoint = backendURL
	}

	binding := ProviderBinding{
		Role:        role,
		Provider:    providerName,
		Endpoint:    endpoint,
		Model:       model,
		RequiresKey: spec.requiresKey,
		APIKey:      spec.key(cfg.Keys),
	}

	if binding.RequiresKey && binding.APIKey == "" {
		return ProviderBinding{}, errors.Wrapf(errors.ErrConfiguration,
			"provider %s requires an API key for role %s but none was supplied", providerName, role)
	}

	return binding, nil
}

// ResolveAll resolves every role the graph uses. The run fails fast here,
// before any agent executes, if any role cannot be bound.
func ResolveAll(cfg config.Config) (map[Role]ProviderBinding, error) {
	bindings := make(map[Role]ProviderBinding, 3)
	for _, role := range []Role{RoleDeepThink, RoleQuickThink, RoleEmbedding} {
		binding, err := Resolve(role, cfg)
		if err != nil {
			return nil, err
		}
		bindings[role] = binding
	}
	return bindings, nil
}

// defaultEndpoint reports the endpoint template for a known provider.
func defaultEndpoint(provider string) string {
	return providerSpecs[provider].endpoint
}
