package ai

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultPersonaKey must exist in every loaded catalog; it backs all
// lookups for spaces without a dedicated persona.
const DefaultPersonaKey = "default"

// Persona is a named behavioral overlay applied atop the base system
// prompt: a tone, a guideline list, and a block of prompt text.
type Persona struct {
	Name                 string   `json:"name"`
	Tone                 string   `json:"tone"`
	Guidelines           []string `json:"guidelines"`
	SystemPromptAddition string   `json:"systemPromptAddition"`
}

func (p Persona) valid() bool {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Tone) == "" {
		return false
	}
	if strings.TrimSpace(p.SystemPromptAddition) == "" {
		return false
	}
	if len(p.Guidelines) == 0 {
		return false
	}
	for _, g := range p.Guidelines {
		if strings.TrimSpace(g) == "" {
			return false
		}
	}
	return true
}

// BuildSystemPrompt wraps a base prompt with the persona overlay:
// name and tone, the bulleted guideline list, then the prompt addition.
func (p Persona) BuildSystemPrompt(basePrompt string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString(fmt.Sprintf("\n\nPersona: %s (tone: %s)", p.Name, p.Tone))
	if len(p.Guidelines) > 0 {
		b.WriteString("\nGuidelines:\n- ")
		b.WriteString(strings.Join(p.Guidelines, "\n- "))
	}
	b.WriteString("\n\n")
	b.WriteString(p.SystemPromptAddition)
	return strings.TrimSpace(b.String())
}

// PersonaCatalog loads personas from a JSON mapping file and serves
// them to concurrent requests. The catalog map is immutable once
// published; a reload builds a fresh map and swaps the pointer, so
// readers never observe a torn state.
type PersonaCatalog struct {
	configPath string
	personas   atomic.Pointer[map[string]Persona]

	reloadMu  sync.Mutex
	lastMtime time.Time
}

func NewPersonaCatalog(configPath string) *PersonaCatalog {
	return &PersonaCatalog{configPath: configPath}
}

// LoadPersonas reads the config file and replaces the catalog. Invalid
// entries are skipped with a warning; a missing "default" entry fails
// the whole load and the previous catalog, if any, stays in place.
func (c *PersonaCatalog) LoadPersonas() error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()
	return c.loadLocked()
}

func (c *PersonaCatalog) loadLocked() error {
	stat, err := os.Stat(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to stat persona config %s: %w", c.configPath, err)
	}

	raw, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to read persona config %s: %w", c.configPath, err)
	}

	var entries map[string]Persona
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("failed to parse persona config %s: %w", c.configPath, err)
	}

	personas := make(map[string]Persona, len(entries))
	for key, persona := range entries {
		if !persona.valid() {
			slog.Warn("skipping invalid persona config", slog.String("key", key))
			continue
		}
		personas[strings.ToLower(key)] = persona
	}

	if _, ok := personas[DefaultPersonaKey]; !ok {
		return fmt.Errorf("persona config %s has no valid %q entry", c.configPath, DefaultPersonaKey)
	}

	c.personas.Store(&personas)
	c.lastMtime = stat.ModTime()

	slog.Info("persona catalog loaded",
		slog.String("path", c.configPath),
		slog.Int("personas", len(personas)),
	)
	return nil
}

// GetPersona resolves a space id case-insensitively, falling back to
// the default persona. Calling before a successful load is a usage
// error.
func (c *PersonaCatalog) GetPersona(spaceID string) (Persona, error) {
	catalog := c.personas.Load()
	if catalog == nil {
		return Persona{}, fmt.Errorf("personas not loaded, call LoadPersonas first")
	}

	if p, ok := (*catalog)[strings.ToLower(spaceID)]; ok {
		return p, nil
	}
	return (*catalog)[DefaultPersonaKey], nil
}

// EnsureLatest reloads the catalog when the config file's modification
// time has advanced. A failed reload keeps the previous catalog:
// stale-but-available beats unavailable. Concurrent triggers serialize
// on the reload mutex and each produce an equivalent catalog.
func (c *PersonaCatalog) EnsureLatest() {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	if c.personas.Load() == nil {
		if err := c.loadLocked(); err != nil {
			slog.Error("persona catalog initial load failed", slog.String("error", err.Error()))
		}
		return
	}

	stat, err := os.Stat(c.configPath)
	if err != nil {
		slog.Error("failed to stat persona config, keeping cached catalog", slog.String("error", err.Error()))
		return
	}
	if !stat.ModTime().After(c.lastMtime) {
		return
	}

	slog.Info("persona config changed on disk, reloading")
	if err := c.loadLocked(); err != nil {
		slog.Error("persona reload failed, keeping cached catalog", slog.String("error", err.Error()))
	}
}
