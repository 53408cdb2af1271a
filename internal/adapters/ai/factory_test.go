package ai

import (
	"context"
	"testing"
	"time"

	"tradingagents/pkg/errors"
)

func TestNewChatClient_RoleMismatch(t *testing.T) {
	binding := ProviderBinding{Role: RoleEmbedding, Provider: ProviderOpenAI, Model: "text-embedding-3-small", APIKey: "sk-test"}

	if _, err := NewChatClient(binding, ClientOptions{}); !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("got %v, want ErrConfiguration", err)
	}
}

func TestNewEmbeddingClient_RoleMismatch(t *testing.T) {
	binding := ProviderBinding{Role: RoleQuickThink, Provider: ProviderOpenAI, Model: "gpt-4o-mini", APIKey: "sk-test"}

	if _, err := NewEmbeddingClient(binding, ClientOptions{}); !errors.Is(err, errors.ErrConfiguration) {
		t.Errorf("got %v, want ErrConfiguration", err)
	}
}

func TestNewChatClient_VariantSelection(t *testing.T) {
	tests := []struct {
		name    string
		binding ProviderBinding
		want    string
	}{
		{
			"openai default endpoint",
			ProviderBinding{Role: RoleQuickThink, Provider: ProviderOpenAI, Endpoint: defaultEndpoint(ProviderOpenAI), Model: "gpt-4o-mini", APIKey: "sk"},
			"openai_compat",
		},
		{
			"anthropic default endpoint",
			ProviderBinding{Role: RoleDeepThink, Provider: ProviderAnthropic, Endpoint: defaultEndpoint(ProviderAnthropic), Model: "claude-sonnet-4-0", APIKey: "ak"},
			"anthropic",
		},
		{
			"anthropic behind a proxy falls back to openai wire format",
			ProviderBinding{Role: RoleDeepThink, Provider: ProviderAnthropic, Endpoint: "http://proxy:8080/v1", Model: "claude-sonnet-4-0", APIKey: "ak"},
			"openai_compat",
		},
		{
			"ollama local endpoint",
			ProviderBinding{Role: RoleQuickThink, Provider: ProviderOllama, Endpoint: defaultEndpoint(ProviderOllama), Model: "llama3.1"},
			"openai_compat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewChatClient(tt.binding, ClientOptions{})
			if err != nil {
				t.Fatalf("NewChatClient failed: %v", err)
			}
			if client.Provider() != tt.binding.Provider {
				t.Errorf("provider = %q, want %q", client.Provider(), tt.binding.Provider)
			}
			if client.Model() != tt.binding.Model {
				t.Errorf("model = %q, want %q", client.Model(), tt.binding.Model)
			}

			var variant string
			switch client.(type) {
			case *openAICompatClient:
				variant = "openai_compat"
			case *anthropicClient:
				variant = "anthropic"
			case *googleChatClient:
				variant = "google"
			}
			if variant != tt.want {
				t.Errorf("variant = %q, want %q", variant, tt.want)
			}
		})
	}
}

func TestNewRateLimiter(t *testing.T) {
	if _, ok := NewRateLimiter(ProviderOllama, RateLimitConfig{}).(*NoOpLimiter); !ok {
		t.Error("disabled config should yield the no-op limiter")
	}

	limiter := NewRateLimiter(ProviderOpenAI, RateLimitConfig{Enabled: true, ReqPerMinute: 600, Burst: 5})
	bucket, ok := limiter.(*TokenBucketLimiter)
	if !ok {
		t.Fatal("enabled config should yield the token bucket limiter")
	}
	if got := bucket.Limit(); got != 600 {
		t.Errorf("limit = %.0f req/min, want 600", got)
	}
}

func TestTokenBucketLimiter_BurstThenBlocks(t *testing.T) {
	limiter := NewTokenBucketLimiter("test", 60, 2)

	if !limiter.Allow() || !limiter.Allow() {
		t.Fatal("burst tokens should be available immediately")
	}
	if limiter.Allow() {
		t.Error("third immediate request should be throttled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); err == nil {
		t.Error("Wait should fail when the context expires before a token frees up")
	}
}

func TestNoOpLimiter(t *testing.T) {
	limiter := NewNoOpLimiter()

	if !limiter.Allow() {
		t.Error("no-op limiter should always allow")
	}
	if err := limiter.Wait(context.Background()); err != nil {
		t.Errorf("no-op Wait failed: %v", err)
	}
}
