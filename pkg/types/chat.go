package types

import "strings"

type MessageRole string

const (
	USER_ROLE_USER      MessageRole = "user"
	USER_ROLE_ASSISTANT MessageRole = "assistant"
)

func (r MessageRole) String() string {
	return string(r)
}

// NormalizeRole maps unknown or missing roles to "user".
// Only "assistant" passes through unchanged.
func NormalizeRole(raw string) MessageRole {
	if MessageRole(strings.ToLower(strings.TrimSpace(raw))) == USER_ROLE_ASSISTANT {
		return USER_ROLE_ASSISTANT
	}
	return USER_ROLE_USER
}

// ChatMessage is one turn of a client-supplied conversation.
// History arrives fully formed on every request and is never persisted.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecordSummary is opaque pass-through data rendered into the prompt text.
type RecordSummary struct {
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Date    string   `json:"date"`
	Tags    []string `json:"tags"`
	Summary string   `json:"summary"`
}

// SpaceStats describes how the caller filtered its records before the request.
type SpaceStats struct {
	TotalRecords    int `json:"totalRecords"`
	IncludedRecords int `json:"includedRecords"`
	FilteredRecords int `json:"filteredRecords"`
}

// ContextFilters carries the active date range, in days, when the caller applied one.
type ContextFilters struct {
	DateRangeDays int `json:"dateRangeDays"`
}

// SpaceContext is the ephemeral per-request description of the active space.
type SpaceContext struct {
	SpaceID       string          `json:"spaceId"`
	SpaceName     string          `json:"spaceName"`
	Description   string          `json:"description"`
	Categories    []string        `json:"categories"`
	RecentRecords []RecordSummary `json:"recentRecords"`
	Stats         *SpaceStats     `json:"stats,omitempty"`
	Filters       *ContextFilters `json:"filters,omitempty"`
}
