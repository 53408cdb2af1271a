package ai

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// openAICompatClient speaks the OpenAI chat-completions wire format. It serves
// openai, openrouter, ollama, and any OpenAI-compatible backend URL override.
type openAICompatClient struct {
	client   openai.Client
	provider string
	model    string
	timeout  time.Duration
	limiter  RateLimiter
	log      *logger.Logger
}

var _ ChatClient = (*openAICompatClient)(nil)

func newOpenAICompatClient(binding ProviderBinding, timeout time.Duration, limiter RateLimiter) *openAICompatClient {
	opts := []option.RequestOption{
		option.WithBaseURL(binding.Endpoint),
	}
	if binding.APIKey != "" {
		opts = append(opts, option.WithAPIKey(binding.APIKey))
	}

	return &openAICompatClient{
		client:   openai.NewClient(opts...),
		provider: binding.Provider,
		model:    binding.Model,
		timeout:  timeout,
		limiter:  limiter,
		log:      logger.Get().With("component", "chat_client", "provider", binding.Provider, "model", binding.Model),
	}
}

func (c *openAICompatClient) Provider() string { return c.provider }
func (c *openAICompatClient) Model() string    { return c.model }

// Complete sends a chat completion request and returns the assistant text.
func (c *openAICompatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &RateLimitError{Provider: c.provider, Limit: c.limiter.Limit(), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrapf(err, "%s chat completion failed", c.provider)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrapf(errors.ErrExternal, "%s returned no choices", c.provider)
	}

	c.log.Debugw("chat completion",
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return resp.Choices[0].Message.Content, nil
}

// openAICompatEmbedder generates embeddings via the OpenAI embeddings API,
// including OpenAI-compatible servers selected by a backend URL override.
type openAICompatEmbedder struct {
	client   openai.Client
	provider string
	model    string
	timeout  time.Duration
	log      *logger.Logger
}

var _ EmbeddingClient = (*openAICompatEmbedder)(nil)

func newOpenAICompatEmbedder(binding ProviderBinding, timeout time.Duration) *openAICompatEmbedder {
	opts := []option.RequestOption{
		option.WithBaseURL(binding.Endpoint),
	}
	if binding.APIKey != "" {
		opts = append(opts, option.WithAPIKey(binding.APIKey))
	}

	return &openAICompatEmbedder{
		client:   openai.NewClient(opts...),
		provider: binding.Provider,
		model:    binding.Model,
		timeout:  timeout,
		log:      logger.Get().With("component", "embedding_client", "provider", binding.Provider, "model", binding.Model),
	}
}

func (c *openAICompatEmbedder) Provider() string { return c.provider }
func (c *openAICompatEmbedder) Model() string    { return c.model }

// Embed creates a vector embedding for the given text.
func (c *openAICompatEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s embedding call failed", c.provider)
	}

	if len(response.Data) == 0 {
		return nil, errors.Wrapf(errors.ErrInternal, "no embedding data returned")
	}

	embeddingData := response.Data[0].Embedding
	result := make([]float32, len(embeddingData))
	for i, val := range embeddingData {
		result[i] = float32(val)
	}

	c.log.Debugw("generated embedding",
		"text_length", len(text),
		"embedding_dims", len(result),
		"tokens_used", response.Usage.TotalTokens)

	return result, nil
}
