package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/companion-ai/relay/app/core"
	"github.com/companion-ai/relay/pkg/ai"
	"github.com/companion-ai/relay/pkg/errors"
	"github.com/companion-ai/relay/pkg/i18n"
	"github.com/companion-ai/relay/pkg/llm"
	"github.com/companion-ai/relay/pkg/safe"
	"github.com/companion-ai/relay/pkg/security"
	"github.com/companion-ai/relay/pkg/telemetry"
	"github.com/companion-ai/relay/pkg/types"
	"github.com/companion-ai/relay/pkg/utils"
)

type ChatLogic struct {
	ctx  context.Context
	core *core.Core
}

func NewChatLogic(ctx context.Context, core *core.Core) *ChatLogic {
	return &ChatLogic{
		ctx:  ctx,
		core: core,
	}
}

type ChatArgs struct {
	Message   string              `json:"message"`
	History   []types.ChatMessage `json:"history"`
	MaxTokens int                 `json:"maxTokens"`
	Space     *types.SpaceContext `json:"spaceContext"`
}

type ChatMetadata struct {
	Model                 string    `json:"model"`
	Provider              string    `json:"provider"`
	Persona               string    `json:"persona"`
	PromptVersion         string    `json:"promptVersion"`
	HistoryCount          int       `json:"historyCount"`
	FinishReason          string    `json:"finishReason"`
	Usage                 llm.Usage `json:"usage"`
	EstimatedPromptTokens int       `json:"estimatedPromptTokens"`
	DetectedLanguage      string    `json:"detectedLanguage"`
	LatencyMs             int64     `json:"latencyMs"`
	CorrelationID         string    `json:"correlationId"`
}

type ChatReply struct {
	Message  string       `json:"message"`
	Metadata ChatMetadata `json:"metadata"`
}

type EchoArgs struct {
	ThreadID  string `json:"threadId"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId"`
}

type EchoMetadata struct {
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	Stage            string `json:"stage"`
	LLMProvider      string `json:"llmProvider"`
	TokenUsage       int    `json:"tokenUsage"`
	CorrelationID    string `json:"correlationId"`
	UserID           string `json:"userId,omitempty"`
	RequestTimestamp string `json:"requestTimestamp,omitempty"`
}

type EchoReply struct {
	ResponseID string       `json:"responseId"`
	ThreadID   string       `json:"threadId"`
	Message    string       `json:"message"`
	Timestamp  string       `json:"timestamp"`
	Metadata   EchoMetadata `json:"metadata"`
}

// Echo exercises the validation, sanitization, and redaction path
// without touching the provider. Useful for client integration checks.
func (l *ChatLogic) Echo(args EchoArgs) (*EchoReply, error) {
	start := time.Now()

	if args.ThreadID == "" {
		return nil, errors.New("ChatLogic.Echo.threadId", i18n.ERROR_INVALIDARGUMENT, nil).Code(http.StatusBadRequest)
	}
	if err := l.validateMessage(args.Message); err != nil {
		return nil, err
	}

	message := security.Sanitize(args.Message)
	message = l.core.Redactor().Redact(message)

	model := llm.ResolveChatModel(l.core.Cfg().LLM.Model)
	estimate := ai.CountTokens(model, "", nil, message)

	return &EchoReply{
		ResponseID: utils.GenRandomID(),
		ThreadID:   args.ThreadID,
		Message:    "Echo: " + message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Metadata: EchoMetadata{
			ProcessingTimeMs: time.Since(start).Milliseconds(),
			Stage:            "echo",
			LLMProvider:      llm.ProviderName,
			TokenUsage:       estimate.Total,
			CorrelationID:    InjectCorrelationID(l.ctx),
			UserID:           args.UserID,
			RequestTimestamp: args.Timestamp,
		},
	}, nil
}

// SendMessage runs the full relay pipeline: validate, sanitize,
// redact, assemble the prompt, call the provider, record telemetry.
func (l *ChatLogic) SendMessage(args ChatArgs) (*ChatReply, error) {
	correlationID := InjectCorrelationID(l.ctx)

	if err := l.validateMessage(args.Message); err != nil {
		l.recordError("VALIDATION_ERROR")
		return nil, err
	}

	message := security.Sanitize(args.Message)
	message = l.core.Redactor().Redact(message)

	history := ai.FormatHistory(args.History)
	for i := range history {
		history[i].Content = l.core.Redactor().Redact(history[i].Content)
	}

	l.core.Personas().EnsureLatest()
	persona, err := l.core.Personas().GetPersona(spaceID(args.Space))
	if err != nil {
		l.recordError("SERVER_ERROR")
		return nil, errors.New("ChatLogic.SendMessage.GetPersona", i18n.ERROR_INTERNAL, err)
	}

	promptTimer := l.core.Metrics().PromptBuildTimer()
	systemPrompt := ai.BuildPrompt(ai.PromptInput{
		Space:       args.Space,
		HistoryText: ai.HistoryText(history),
		UserMessage: message,
		Persona:     &persona,
	})
	promptTimer.ObserveDuration()

	model := llm.ResolveChatModel(l.core.Cfg().LLM.Model)
	estimate := ai.CountTokens(model, systemPrompt, history, message)

	providerTimer := l.core.Metrics().ProviderResponseTimer(model)
	result, err := l.core.Provider().SendChat(l.ctx, llm.ChatRequest{
		SystemPrompt:  systemPrompt,
		History:       history,
		UserMessage:   message,
		MaxTokens:     args.MaxTokens,
		CorrelationID: correlationID,
	})
	providerTimer.ObserveDuration()

	if err != nil {
		code := "UNKNOWN"
		if llmErr, ok := err.(*llm.Error); ok {
			code = string(llmErr.Code)
		}
		l.core.Metrics().ProviderErrorInc(code)
		l.recordError(code)
		return nil, providerError(err)
	}

	l.core.Telemetry().Record(telemetry.Sample{
		LatencyMs:        result.LatencyMs,
		HasLatency:       true,
		PromptTokens:     firstPositive(result.Usage.Prompt, estimate.Total),
		CompletionTokens: result.Usage.Completion,
	})
	safe.Run(func() {
		l.core.Alerts().EvaluateAndRecord()
	})

	return &ChatReply{
		Message: result.Message,
		Metadata: ChatMetadata{
			Model:                 model,
			Provider:              result.Provider,
			Persona:               persona.Name,
			PromptVersion:         ai.SystemPromptVersion,
			HistoryCount:          len(history),
			FinishReason:          result.FinishReason,
			Usage:                 result.Usage,
			EstimatedPromptTokens: estimate.Total,
			DetectedLanguage:      utils.WhatLang(message),
			LatencyMs:             result.LatencyMs,
			CorrelationID:         result.CorrelationID,
		},
	}, nil
}

func (l *ChatLogic) validateMessage(message string) error {
	ok, code := l.core.Validator().ValidateMessage(message)
	if ok {
		return nil
	}

	key := i18n.ERROR_INVALIDARGUMENT
	switch code {
	case security.ValidationEmpty:
		key = i18n.ERROR_MESSAGE_EMPTY
	case security.ValidationTooLong:
		key = i18n.ERROR_MESSAGE_TOO_LONG
	case security.ValidationMalicious:
		key = i18n.ERROR_MESSAGE_MALICIOUS
	}
	return errors.New("ChatLogic.validateMessage", key, nil).Code(http.StatusBadRequest)
}

func (l *ChatLogic) recordError(errType string) {
	l.core.Telemetry().Record(telemetry.Sample{ErrorType: errType})
}

func spaceID(space *types.SpaceContext) string {
	if space == nil {
		return ""
	}
	return space.SpaceID
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// providerError keeps classified provider errors intact for the
// response layer and wraps anything else as an internal error.
func providerError(err error) error {
	if _, ok := err.(*llm.Error); ok {
		return err
	}
	return errors.New("ChatLogic.SendMessage.provider", i18n.ERROR_LLM_UNAVAILABLE, err)
}
