package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"tradingagents/pkg/errors"
	"tradingagents/pkg/logger"
)

// anthropicClient speaks the Anthropic messages API directly. Used only at
// the anthropic default endpoint; backend URL overrides route through the
// OpenAI-compatible variant.
type anthropicClient struct {
	endpoint string
	apiKey   string
	model    string
	timeout  time.Duration
	limiter  RateLimiter
	log      *logger.Logger
}

var _ ChatClient = (*anthropicClient)(nil)

func newAnthropicClient(binding ProviderBinding, timeout time.Duration, limiter RateLimiter) *anthropicClient {
	return &anthropicClient{
		endpoint: binding.Endpoint + "/messages",
		apiKey:   binding.APIKey,
		model:    binding.Model,
		timeout:  timeout,
		limiter:  limiter,
		log:      logger.Get().With("component", "chat_client", "provider", ProviderAnthropic, "model", binding.Model),
	}
}

func (c *anthropicClient) Provider() string { return ProviderAnthropic }
func (c *anthropicClient) Model() string    { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Complete sends a messages request to the Anthropic API.
func (c *anthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", &RateLimitError{Provider: ProviderAnthropic, Limit: c.limiter.Limit(), Err: err}
	}

	apiReq := anthropicRequest{
		Model:       c.model,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if apiReq.MaxTokens == 0 {
		apiReq.MaxTokens = 4096
	}

	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "assistant"
		}
		apiReq.Messages = append(apiReq.Messages, anthropicMessage{Role: role, Content: msg.Content})
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", errors.Wrap(err, "marshal anthropic request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "create HTTP request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: c.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "send anthropic request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read anthropic response")
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			return "", errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s - %s",
				resp.StatusCode, errResp.Error.Type, errResp.Error.Message)
		}
		return "", errors.Wrapf(errors.ErrExternal, "anthropic API error (%d): %s",
			resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", errors.Wrap(err, "unmarshal anthropic response")
	}

	for _, block := range apiResp.Content {
		if block.Type == "text" {
			c.log.Debugw("chat completion",
				"prompt_tokens", apiResp.Usage.InputTokens,
				"completion_tokens", apiResp.Usage.OutputTokens)
			return block.Text, nil
		}
	}

	return "", errors.Wrap(errors.ErrExternal, "anthropic returned no text content")
}
