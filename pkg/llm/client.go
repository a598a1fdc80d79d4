package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"
	openai "github.com/sashabaranov/go-openai"

	"github.com/companion-ai/relay/pkg/types"
	"github.com/companion-ai/relay/pkg/utils"
)

const (
	ProviderName = "together"

	DefaultBaseURL = "https://api.together.xyz/v1"
	DefaultTimeout = 60 * time.Second

	defaultMaxTokens   = 512
	defaultTemperature = 0.2
)

// Model catalog mirrored from the provider account. The friendly model
// is the default; callers can override per deployment via config.
const (
	ModelChatFriendly  = "gemma-3n-e4b-it"
	ModelChatReasoning = "ServiceNow-AI/Apriel-1.5-15b-Thinker"
	ModelChatFallback  = "openai/gpt-oss-20b"
)

// ResolveChatModel picks the configured model or falls back to the
// friendly default.
func ResolveChatModel(configured string) string {
	if configured != "" {
		return configured
	}
	return ModelChatFriendly
}

type Usage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
	Total      int `json:"total"`
}

type ChatRequest struct {
	SystemPrompt  string
	History       []types.ChatMessage
	UserMessage   string
	MaxTokens     int
	Temperature   float32
	CorrelationID string
}

type ChatResult struct {
	Message       string `json:"message"`
	FinishReason  string `json:"finishReason"`
	Usage         Usage  `json:"usage"`
	Provider      string `json:"provider"`
	CorrelationID string `json:"correlationId"`
	LatencyMs     int64  `json:"latencyMs"`
}

// ChatProvider is the single outbound dependency of the chat pipeline.
type ChatProvider interface {
	SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to the Together OpenAI-compatible endpoint. One
// request per call, hard timeout, no internal retries.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient fails when no credential is configured; a relay without a
// provider key cannot serve chat at all.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, newError("provider API key is required", 0, ErrCodeMissingAPIKey, false, nil)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = lo.Ternary(cfg.BaseURL != "", cfg.BaseURL, DefaultBaseURL)
	clientCfg.HTTPClient = &http.Client{
		Transport: &relayTransport{base: http.DefaultTransport},
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   ResolveChatModel(cfg.Model),
		timeout: timeout,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// SendChat issues one chat completion call. The context is bounded by
// the client timeout, so aborting one request never affects another.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = utils.GenRandomID()
	}

	var retryAfter retryAfterHolder
	ctx = context.WithValue(ctx, correlationIDKey, correlationID)
	ctx = context.WithValue(ctx, retryAfterKey, &retryAfter)
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, lo.Map(req.History, func(item types.ChatMessage, _ int) openai.ChatCompletionMessage {
		return openai.ChatCompletionMessage{
			Role:    types.NormalizeRole(item.Role).String(),
			Content: item.Content,
		}
	})...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserMessage,
	})

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    messages,
	})
	latency := time.Since(start)

	if err != nil {
		classified := c.classifyRequestError(err, retryAfter.seconds, latency)
		slog.Warn("provider call failed",
			slog.String("provider", ProviderName),
			slog.String("model", c.model),
			slog.String("correlation_id", correlationID),
			slog.String("code", string(classified.Code)),
			slog.Int("status", classified.Status),
		)
		return nil, classified
	}

	result := &ChatResult{
		FinishReason:  "unknown",
		Provider:      ProviderName,
		CorrelationID: correlationID,
		LatencyMs:     latency.Milliseconds(),
		Usage: Usage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
	}
	if len(resp.Choices) > 0 {
		result.Message = resp.Choices[0].Message.Content
		if reason := string(resp.Choices[0].FinishReason); reason != "" {
			result.FinishReason = reason
		}
	}

	slog.Debug("provider call completed",
		slog.String("provider", ProviderName),
		slog.String("model", c.model),
		slog.String("correlation_id", correlationID),
		slog.Int64("latency_ms", result.LatencyMs),
		slog.Int("total_tokens", result.Usage.Total),
	)

	return result, nil
}

func (c *Client) classifyRequestError(err error, retryAfter int, latency time.Duration) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		e := newError("provider request timed out after "+latency.Truncate(time.Millisecond).String(),
			http.StatusRequestTimeout, ErrCodeTimeout, true, err)
		return e
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		classified := Classify(apiErr.HTTPStatusCode, apiErr.Message, retryAfter)
		classified.cause = err
		return classified
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		classified := Classify(reqErr.HTTPStatusCode, reqErr.Error(), retryAfter)
		classified.cause = err
		return classified
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return newError("invalid JSON from provider", 0, ErrCodeInvalidJSON, false, err)
	}

	// Transport-level failures look like provider outages to the caller.
	return newError("provider request failed", http.StatusInternalServerError, ErrCodeServerError, true, err)
}

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	retryAfterKey
)

type retryAfterHolder struct {
	seconds int
}

// relayTransport stamps the per-request correlation header and lifts
// the Retry-After hint off 429 responses before the SDK discards it.
type relayTransport struct {
	base http.RoundTripper
}

func (t *relayTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if cid, ok := req.Context().Value(correlationIDKey).(string); ok && cid != "" {
		req.Header.Set("X-Correlation-ID", cid)
	}

	resp, err := t.base.RoundTrip(req)
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		if holder, ok := req.Context().Value(retryAfterKey).(*retryAfterHolder); ok {
			holder.seconds, _ = strconv.Atoi(resp.Header.Get("Retry-After"))
		}
	}
	return resp, err
}
