package core

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/companion-ai/relay/pkg/limiter"
	"github.com/companion-ai/relay/pkg/llm"
	"github.com/companion-ai/relay/pkg/security"
)

func MustLoadBaseConfig(path string) CoreConfig {
	if path == "" {
		return LoadBaseConfigFromENV()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	conf := &CoreConfig{}
	if err = toml.Unmarshal(raw, conf); err != nil {
		panic(err)
	}
	conf.applyDefaults()

	return *conf
}

func LoadBaseConfigFromENV() CoreConfig {
	var c CoreConfig
	c.FromENV()
	c.applyDefaults()
	return c
}

type CoreConfig struct {
	Addr string `toml:"addr"`
	Log  Log    `toml:"log"`

	LLM       LLMConfig       `toml:"llm"`
	Chat      ChatConfig      `toml:"chat"`
	Personas  PersonaConfig   `toml:"personas"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Security  SecurityConfig  `toml:"security"`
}

type LLMConfig struct {
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	Model     string `toml:"model"`
	TimeoutMs int    `toml:"timeout_ms"`
}

func (c LLMConfig) ClientConfig() llm.Config {
	return llm.Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Model:   c.Model,
		Timeout: time.Duration(c.TimeoutMs) * time.Millisecond,
	}
}

type ChatConfig struct {
	MaxMessageLength int  `toml:"max_message_length"`
	RedactionEnabled bool `toml:"redaction_enabled"`
}

type PersonaConfig struct {
	ConfigPath string `toml:"config_path"`
}

type RateLimitConfig struct {
	PerMinute int `toml:"per_minute"`
	PerHour   int `toml:"per_hour"`
	PerDay    int `toml:"per_day"`
}

func (c RateLimitConfig) LimiterConfig() limiter.Config {
	cfg := limiter.DefaultConfig()
	if c.PerMinute > 0 {
		cfg.Minute.Limit = c.PerMinute
	}
	if c.PerHour > 0 {
		cfg.Hour.Limit = c.PerHour
	}
	if c.PerDay > 0 {
		cfg.Day.Limit = c.PerDay
	}
	return cfg
}

type SecurityConfig struct {
	AuthRequired bool   `toml:"auth_required"`
	JWTSecret    string `toml:"jwt_secret"`
	AdminToken   string `toml:"admin_token"`
	HTTPSOnly    bool   `toml:"https_only"`
}

type Log struct {
	Level string `toml:"level"`
	Path  string `toml:"path"`
}

func (l *Log) FromENV() {
	l.Level = os.Getenv("RELAY_LOG_LEVEL")
	l.Path = os.Getenv("RELAY_LOG_PATH")
}

func (l *Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "info":
		return slog.LevelInfo
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

func (c *CoreConfig) FromENV() {
	c.Addr = os.Getenv("RELAY_SERVICE_ADDRESS")
	c.Log.FromENV()

	c.LLM.APIKey = os.Getenv("TOGETHER_API_KEY")
	c.LLM.BaseURL = os.Getenv("TOGETHER_BASE_URL")
	c.LLM.Model = os.Getenv("TOGETHER_MODEL")
	c.LLM.TimeoutMs = envInt("LLM_TIMEOUT_MS", 0)

	c.Chat.MaxMessageLength = envInt("RELAY_MAX_MESSAGE_LENGTH", 0)
	c.Chat.RedactionEnabled = envBool("RELAY_REDACTION_ENABLED", true)

	c.Personas.ConfigPath = os.Getenv("RELAY_PERSONA_CONFIG")

	c.RateLimit.PerMinute = envInt("RELAY_RATE_LIMIT_PER_MINUTE", 0)
	c.RateLimit.PerHour = envInt("RELAY_RATE_LIMIT_PER_HOUR", 0)
	c.RateLimit.PerDay = envInt("RELAY_RATE_LIMIT_PER_DAY", 0)

	c.Security.AuthRequired = envBool("REQUIRE_AUTH", false)
	c.Security.JWTSecret = os.Getenv("RELAY_JWT_SECRET")
	c.Security.AdminToken = os.Getenv("ADMIN_TOKEN")
	c.Security.HTTPSOnly = envBool("HTTPS_ONLY", false)
}

func (c *CoreConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":3030"
	}
	if c.LLM.TimeoutMs <= 0 {
		c.LLM.TimeoutMs = int(llm.DefaultTimeout / time.Millisecond)
	}
	if c.Chat.MaxMessageLength <= 0 {
		c.Chat.MaxMessageLength = security.DefaultMaxMessageLength
	}
	if c.Personas.ConfigPath == "" {
		c.Personas.ConfigPath = "./config/personas.json"
	}
	if c.Security.AdminToken == "" {
		c.Security.AdminToken = "admin"
	}
}

func envInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func envBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
