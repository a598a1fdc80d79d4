package ai

import (
	"fmt"
	"strings"

	"github.com/companion-ai/relay/pkg/types"
)

const SystemPromptVersion = "v1.0"

// BasePreamble is the fixed instructional head of every system prompt.
const BasePreamble = `You are the Universal Life Companion: a concise, compassionate assistant that helps users organize and reflect on their personal information. You are safety-first, privacy-conscious, and honest about uncertainty.

Guidelines:
- Keep replies short, clear, and actionable (aim for <= 80 words).
- Reply in the same language as the user's message.
- Be empathetic and encouraging without overstepping into medical or legal advice.
- Ground responses strictly in the provided context and history; if missing info, say what you need.
- Avoid fabricating details; acknowledge uncertainty explicitly.
- Respect privacy: do not request sensitive identifiers unless essential to help.
- Offer at most 2-3 specific next steps when appropriate.`

const promptAppend = `Conversation history (oldest to newest):
{history}

User message:
{user_message}

Respond with a concise answer that follows the guidelines above.`

// PromptTemplate is a three-part prompt: Header (preamble, possibly
// persona-wrapped), Body (per-request space context), Append (history
// and user message scaffold). Placeholders in any part are replaced
// from Vars on Build.
type PromptTemplate struct {
	Header string
	Body   string
	Append string
	Vars   map[string]string
}

func (pt *PromptTemplate) Build() string {
	prompt := pt.Header + "\n\n" + pt.Body + "\n\n" + pt.Append

	for k, v := range pt.Vars {
		prompt = strings.ReplaceAll(prompt, k, v)
	}

	return strings.TrimSpace(prompt)
}

func (pt *PromptTemplate) SetVar(key, value string) {
	if pt.Vars == nil {
		pt.Vars = make(map[string]string)
	}
	pt.Vars[key] = value
}

func (pt *PromptTemplate) AppendBody(content string) {
	if pt.Body == "" {
		pt.Body = content
	} else {
		pt.Body += "\n\n" + content
	}
}

// PromptInput carries everything the builder needs. All data is
// caller-supplied; the builder itself reads no clocks and no state,
// so equal inputs always produce equal prompts.
type PromptInput struct {
	Space       *types.SpaceContext
	HistoryText string
	UserMessage string
	Persona     *Persona
}

// BuildPrompt renders the full system prompt: preamble, active-space
// block, record summaries, context notes, then the history and user
// message scaffold.
func BuildPrompt(input PromptInput) string {
	template := &PromptTemplate{
		Header: BasePreamble,
		Append: promptAppend,
		Vars:   make(map[string]string),
	}

	if input.Persona != nil {
		template.Header = input.Persona.BuildSystemPrompt(BasePreamble)
	}

	if input.Space != nil {
		template.AppendBody(spaceBlock(input.Space))
		template.AppendBody("Recent Records:\n" + recordsBlock(input.Space.RecentRecords))
		if notes := contextNotes(input.Space); notes != "" {
			template.AppendBody("Context Notes:\n" + notes)
		}
	}

	historyText := input.HistoryText
	if historyText == "" {
		historyText = "None"
	}
	template.SetVar("{history}", historyText)
	template.SetVar("{user_message}", input.UserMessage)

	return template.Build()
}

func spaceBlock(space *types.SpaceContext) string {
	var b strings.Builder
	b.WriteString("Active Space: " + space.SpaceName)
	if space.Description != "" {
		b.WriteString("\nDescription: " + space.Description)
	}
	b.WriteString("\nCategories: ")
	if len(space.Categories) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(space.Categories, ", "))
	}
	return b.String()
}

func recordsBlock(records []types.RecordSummary) string {
	if len(records) == 0 {
		return "None"
	}

	lines := make([]string, 0, len(records))
	for i, r := range records {
		line := fmt.Sprintf("%d. %s (%s, %s)", i+1, r.Title, r.Type, r.Date)
		if len(r.Tags) > 0 {
			line += " [" + strings.Join(r.Tags, ", ") + "]"
		}
		if r.Summary != "" {
			line += " - " + r.Summary
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// contextNotes describes how the caller filtered its records. Lines
// are emitted only when the underlying numbers are available.
func contextNotes(space *types.SpaceContext) string {
	var lines []string

	if stats := space.Stats; stats != nil && stats.TotalRecords > 0 {
		line := fmt.Sprintf("- Including %d of %d records", stats.IncludedRecords, stats.TotalRecords)
		if stats.FilteredRecords > 0 {
			line += fmt.Sprintf(" (%d filtered out)", stats.FilteredRecords)
		}
		lines = append(lines, line+".")
	}

	if filters := space.Filters; filters != nil && filters.DateRangeDays > 0 {
		lines = append(lines, fmt.Sprintf("- Records span a date range of %d days.", filters.DateRangeDays))
	}

	return strings.Join(lines, "\n")
}
