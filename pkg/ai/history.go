package ai

import (
	"strings"

	"github.com/samber/lo"

	"github.com/companion-ai/relay/pkg/types"
)

// MaxHistory bounds the conversation window sent to the provider.
const MaxHistory = 3

// FormatHistory normalizes client-supplied history: blank entries are
// dropped, content is trimmed, unknown roles become "user", and only
// the last MaxHistory qualifying turns survive, oldest to newest.
// Nil or empty input yields an empty slice, never an error.
func FormatHistory(history []types.ChatMessage) []types.ChatMessage {
	if len(history) == 0 {
		return nil
	}

	qualified := lo.Filter(history, func(m types.ChatMessage, _ int) bool {
		return strings.TrimSpace(m.Content) != ""
	})
	if len(qualified) > MaxHistory {
		qualified = qualified[len(qualified)-MaxHistory:]
	}

	return lo.Map(qualified, func(m types.ChatMessage, _ int) types.ChatMessage {
		return types.ChatMessage{
			Role:    types.NormalizeRole(m.Role).String(),
			Content: strings.TrimSpace(m.Content),
		}
	})
}

// HistoryText renders a formatted window as "role: content" lines for
// the prompt, or "None" when the window is empty.
func HistoryText(history []types.ChatMessage) string {
	if len(history) == 0 {
		return "None"
	}

	lines := lo.Map(history, func(m types.ChatMessage, _ int) string {
		return m.Role + ": " + m.Content
	})
	return strings.Join(lines, "\n")
}
