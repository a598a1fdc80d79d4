package ai

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/companion-ai/relay/pkg/types"
)

// fallbackEncodingModel covers provider models tiktoken has never
// heard of; the estimate only feeds logs and telemetry.
const fallbackEncodingModel = "gpt-3.5-turbo"

type TokenCount struct {
	Model        int `json:"-"`
	SystemPrompt int `json:"systemPromptTokens"`
	History      int `json:"historyTokens"`
	User         int `json:"userTokens"`
	Total        int `json:"total"`
}

// CountTokens estimates the token footprint of a request before it is
// sent: system prompt, formatted history, and the user message.
func CountTokens(model, systemPrompt string, history []types.ChatMessage, userMessage string) TokenCount {
	encoder, err := tiktoken.EncodingForModel(model)
	if err != nil {
		encoder, err = tiktoken.EncodingForModel(fallbackEncodingModel)
		if err != nil {
			return TokenCount{}
		}
	}

	count := func(text string) int {
		return len(encoder.Encode(text, nil, nil))
	}

	result := TokenCount{
		SystemPrompt: count(systemPrompt),
		User:         count(userMessage),
	}
	for _, msg := range history {
		result.History += count(types.NormalizeRole(msg.Role).String() + ": " + msg.Content)
	}
	result.Total = result.SystemPrompt + result.History + result.User

	return result
}
