package ai

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPersonaConfig = `{
  "default": {
    "name": "General Assistant",
    "tone": "helpful, concise, friendly",
    "guidelines": ["Be helpful and responsive", "Keep responses concise"],
    "systemPromptAddition": "You are a general assistant."
  },
  "health": {
    "name": "Health Companion",
    "tone": "empathetic, cautious, supportive",
    "guidelines": ["Always include medical disclaimers"],
    "systemPromptAddition": "You are a health companion."
  },
  "broken": {
    "name": "",
    "tone": "",
    "guidelines": [],
    "systemPromptAddition": ""
  }
}`

func writePersonaConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "personas.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPersonaCatalog_Load(t *testing.T) {
	catalog := NewPersonaCatalog(writePersonaConfig(t, testPersonaConfig))
	require.NoError(t, catalog.LoadPersonas())

	p, err := catalog.GetPersona("health")
	require.NoError(t, err)
	assert.Equal(t, "Health Companion", p.Name)

	// invalid entries never make it into the catalog
	p, err = catalog.GetPersona("broken")
	require.NoError(t, err)
	assert.Equal(t, "General Assistant", p.Name)
}

func TestPersonaCatalog_SameSpaceSamePersona(t *testing.T) {
	catalog := NewPersonaCatalog(writePersonaConfig(t, testPersonaConfig))
	require.NoError(t, catalog.LoadPersonas())

	first, err := catalog.GetPersona("health")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := catalog.GetPersona("health")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPersonaCatalog_CaseInsensitiveLookup(t *testing.T) {
	catalog := NewPersonaCatalog(writePersonaConfig(t, testPersonaConfig))
	require.NoError(t, catalog.LoadPersonas())

	p, err := catalog.GetPersona("HeAlTh")
	require.NoError(t, err)
	assert.Equal(t, "Health Companion", p.Name)
}

func TestPersonaCatalog_UnknownSpaceFallsBackToDefault(t *testing.T) {
	catalog := NewPersonaCatalog(writePersonaConfig(t, testPersonaConfig))
	require.NoError(t, catalog.LoadPersonas())

	for _, space := range []string{"unknown", "", "space-123"} {
		p, err := catalog.GetPersona(space)
		require.NoError(t, err)
		assert.Equal(t, "General Assistant", p.Name, "space %q", space)
	}
}

func TestPersonaCatalog_MissingDefaultFailsLoad(t *testing.T) {
	path := writePersonaConfig(t, `{
  "health": {
    "name": "Health Companion",
    "tone": "empathetic",
    "guidelines": ["x"],
    "systemPromptAddition": "You are a health companion."
  }
}`)
	catalog := NewPersonaCatalog(path)
	assert.Error(t, catalog.LoadPersonas())

	_, err := catalog.GetPersona("health")
	assert.Error(t, err)
}

func TestPersonaCatalog_GetBeforeLoad(t *testing.T) {
	catalog := NewPersonaCatalog("does-not-matter.json")
	_, err := catalog.GetPersona("default")
	assert.Error(t, err)
}

func TestPersonaCatalog_EnsureLatestReloadsOnMtimeChange(t *testing.T) {
	path := writePersonaConfig(t, testPersonaConfig)
	catalog := NewPersonaCatalog(path)
	require.NoError(t, catalog.LoadPersonas())

	updated := `{
  "default": {
    "name": "Updated Assistant",
    "tone": "helpful",
    "guidelines": ["Be helpful"],
    "systemPromptAddition": "You are an updated assistant."
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))
	// mtime granularity can swallow same-instant rewrites
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	catalog.EnsureLatest()

	p, err := catalog.GetPersona("default")
	require.NoError(t, err)
	assert.Equal(t, "Updated Assistant", p.Name)
}

func TestPersonaCatalog_FailedReloadKeepsCachedCatalog(t *testing.T) {
	path := writePersonaConfig(t, testPersonaConfig)
	catalog := NewPersonaCatalog(path)
	require.NoError(t, catalog.LoadPersonas())

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	catalog.EnsureLatest()

	p, err := catalog.GetPersona("health")
	require.NoError(t, err)
	assert.Equal(t, "Health Companion", p.Name)
}

func TestPersona_BuildSystemPrompt(t *testing.T) {
	p := Persona{
		Name:                 "Health Companion",
		Tone:                 "empathetic, cautious, supportive",
		Guidelines:           []string{"Always include medical disclaimers", "Focus on wellness"},
		SystemPromptAddition: "You are a health companion.",
	}

	prompt := p.BuildSystemPrompt("Base prompt.")

	assert.Contains(t, prompt, "Base prompt.")
	assert.Contains(t, prompt, "Persona: Health Companion (tone: empathetic, cautious, supportive)")
	assert.Contains(t, prompt, "- Always include medical disclaimers")
	assert.Contains(t, prompt, "- Focus on wellness")
	assert.Contains(t, prompt, "You are a health companion.")
}
