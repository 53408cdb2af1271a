package ai

import (
	"time"

	"tradingagents/pkg/errors"
)

// ClientOptions tune the constructed clients.
type ClientOptions struct {
	Timeout    time.Duration
	RateLimits map[string]RateLimitConfig
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.Timeout == 0 {
		o.Timeout = defaultTimeout()
	}
	if o.RateLimits == nil {
		o.RateLimits = DefaultRateLimits()
	}
	return o
}

func defaultTimeout() time.Duration {
	return 120 * time.Second
}

// NewChatClient constructs the provider variant for a resolved binding.
// The variant set is closed: native clients are selected only at a provider's
// default endpoint; any backend URL override routes through the
// OpenAI-compatible variant regardless of the provider label.
func NewChatClient(binding ProviderBinding, opts ClientOptions) (ChatClient, error) {
	if binding.Role == RoleEmbedding {
		return nil, errors.Wrapf(errors.ErrConfiguration, "role %s does not resolve to a chat client", binding.Role)
	}

	opts = opts.withDefaults()
	limiter := NewRateLimiter(binding.Provider, opts.RateLimits[binding.Provider])

	switch {
	case binding.Provider == ProviderGoogle && binding.Endpoint == defaultEndpoint(ProviderGoogle):
		return newGoogleChatClient(binding, opts.Timeout, limiter)
	case binding.Provider == ProviderAnthropic && binding.Endpoint == defaultEndpoint(ProviderAnthropic):
		return newAnthropicClient(binding, opts.Timeout, limiter), nil
	default:
		return newOpenAICompatClient(binding, opts.Timeout, limiter), nil
	}
}

// NewEmbeddingClient constructs the embedding variant for a resolved binding.
func NewEmbeddingClient(binding ProviderBinding, opts ClientOptions) (EmbeddingClient, error) {
	if binding.Role != RoleEmbedding {
		return nil, errors.Wrapf(errors.ErrConfiguration, "role %s does not resolve to an embedding client", binding.Role)
	}

	opts = opts.withDefaults()

	if binding.Provider == ProviderGoogle && binding.Endpoint == defaultEndpoint(ProviderGoogle) {
		return newGoogleEmbedder(binding, opts.Timeout)
	}
	return newOpenAICompatEmbedder(binding, opts.Timeout), nil
}
