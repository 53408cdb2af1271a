package ai

import (
	"context"
	"time"

	"google.golang.org/genai"

	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// googleChatClient is the native Gemini variant, used when the google
// provider is selected without a backend URL override. With an override the
// factory routes google through the OpenAI-compatible variant instead.
type googleChatClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	limiter RateLimiter
	log     *logger.Logger
}

var _ ChatClient = (*googleChatClient)(nil)

func newGoogleChatClient(binding ProviderBinding, timeout time.Duration, limiter RateLimiter) (*googleChatClient, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  binding.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &googleChatClient{
		client:  client,
		model:   binding.Model,
		timeout: timeout,
		limiter: limiter,
		log:     logger.Get().With("component", "chat_client", "provider", ProviderGoogle, "model", binding.Model),
	}, nil
}

func (c *googleChatClient) Provider() string { return ProviderGoogle }
func (c *googleChatClient) Model() string    { return c.model }

// Complete sends the conversation to Gemini and returns the response text.
func (c *googleChatClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &RateLimitError{Provider: ProviderGoogle, Limit: c.limiter.Limit(), Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content failed")
	}

	text := resp.Text()
	if text == "" {
		return "", errors.Wrap(errors.ErrExternal, "gemini returned empty response")
	}

	return text, nil
}

// googleEmbedder is the native Gemini embedding variant.
type googleEmbedder struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	log     *logger.Logger
}

var _ EmbeddingClient = (*googleEmbedder)(nil)

func newGoogleEmbedder(binding ProviderBinding, timeout time.Duration) (*googleEmbedder, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  binding.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}

	return &googleEmbedder{
		client:  client,
		model:   binding.Model,
		timeout: timeout,
		log:     logger.Get().With("component", "embedding_client", "provider", ProviderGoogle, "model", binding.Model),
	}, nil
}

func (c *googleEmbedder) Provider() string { return ProviderGoogle }
func (c *googleEmbedder) Model() string    { return c.model }

// Embed returns the Gemini embedding vector for the given text.
func (c *googleEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "text cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, errors.Wrap(err, "gemini embed content failed")
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.Wrap(errors.ErrInternal, "no embedding data returned")
	}

	return resp.Embeddings[0].Values, nil
}
