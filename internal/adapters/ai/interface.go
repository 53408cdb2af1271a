package ai

import "context"

// Role identifies the capability a binding is resolved for.
type Role string

const (
	// RoleDeepThink selects the model used for complex multi-step reasoning.
	RoleDeepThink Role = "deep_think"
	// RoleQuickThink selects the model used for low-latency, simpler tasks.
	RoleQuickThink Role = "quick_think"
	// RoleEmbedding selects the model used to embed text.
	RoleEmbedding Role = "embedding"
)

// MessageRole defines the role of a message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    MessageRole
	Content string
}

// CompletionRequest represents a chat completion request.
type CompletionRequest struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// ChatClient is the capability interface every LLM provider variant satisfies.
// Providers are a closed set of variants behind this interface; call sites
// never branch on provider names.
type ChatClient interface {
	// Provider returns the provider identifier the client was built for.
	Provider() string

	// Model returns the model id the client sends requests with.
	Model() string

	// Complete sends the request and returns the assistant's text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// EmbeddingClient is the capability interface for embedding provider variants.
type EmbeddingClient interface {
	Provider() string
	Model() string

	// Embed returns the vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
