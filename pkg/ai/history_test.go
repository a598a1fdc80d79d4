package ai

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/companion-ai/relay/pkg/types"
)

func TestFormatHistory_KeepsLastThreeInOrder(t *testing.T) {
	var history []types.ChatMessage
	for i := 1; i <= 10; i++ {
		history = append(history, types.ChatMessage{
			Role:    "user",
			Content: fmt.Sprintf("message %d", i),
		})
	}

	formatted := FormatHistory(history)

	assert.Len(t, formatted, MaxHistory)
	assert.Equal(t, "message 8", formatted[0].Content)
	assert.Equal(t, "message 9", formatted[1].Content)
	assert.Equal(t, "message 10", formatted[2].Content)
}

func TestFormatHistory_ShortInputSurvivesWhole(t *testing.T) {
	history := []types.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi there"},
	}

	formatted := FormatHistory(history)

	assert.Len(t, formatted, 2)
	assert.Equal(t, "hello", formatted[0].Content)
	assert.Equal(t, "hi there", formatted[1].Content)
}

func TestFormatHistory_EmptyAndNil(t *testing.T) {
	assert.Empty(t, FormatHistory(nil))
	assert.Empty(t, FormatHistory([]types.ChatMessage{}))
}

func TestFormatHistory_DropsBlankEntriesBeforeWindowing(t *testing.T) {
	history := []types.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "user", Content: "   "},
		{Role: "assistant", Content: ""},
		{Role: "user", Content: "second"},
		{Role: "assistant", Content: "third"},
	}

	formatted := FormatHistory(history)

	assert.Len(t, formatted, 3)
	assert.Equal(t, "first", formatted[0].Content)
	assert.Equal(t, "second", formatted[1].Content)
	assert.Equal(t, "third", formatted[2].Content)
}

func TestFormatHistory_NormalizesRoles(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"user", "user"},
		{"assistant", "assistant"},
		{"ASSISTANT", "assistant"},
		{"system", "user"},
		{"bot", "user"},
		{"", "user"},
	}

	for _, tt := range tests {
		formatted := FormatHistory([]types.ChatMessage{{Role: tt.raw, Content: "x"}})
		assert.Equal(t, tt.want, formatted[0].Role, "raw role %q", tt.raw)
	}
}

func TestFormatHistory_TrimsContent(t *testing.T) {
	formatted := FormatHistory([]types.ChatMessage{{Role: "user", Content: "  padded  "}})
	assert.Equal(t, "padded", formatted[0].Content)
}

func TestHistoryText(t *testing.T) {
	assert.Equal(t, "None", HistoryText(nil))

	text := HistoryText([]types.ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hi"},
	})
	assert.Equal(t, "user: hello\nassistant: hi", text)
}
