package core

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/companion-ai/relay/pkg/ai"
	"github.com/companion-ai/relay/pkg/limiter"
	"github.com/companion-ai/relay/pkg/llm"
	"github.com/companion-ai/relay/pkg/security"
	"github.com/companion-ai/relay/pkg/telemetry"
)

type Core struct {
	cfg CoreConfig

	httpEngine *gin.Engine
	metrics    *Metrics

	provider  llm.ChatProvider
	personas  *ai.PersonaCatalog
	validator *security.InputValidator
	redactor  *security.Redactor
	limiter   *limiter.SlidingWindow

	telemetry *telemetry.Aggregation
	alerts    *telemetry.Alerts
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, //days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	provider, err := llm.NewClient(cfg.LLM.ClientConfig())
	if err != nil {
		// No provider credential means no chat at all, fail fast.
		slog.Error("provider client setup failed", slog.String("error", err.Error()))
		panic(err)
	}

	personas := ai.NewPersonaCatalog(cfg.Personas.ConfigPath)
	if err := personas.LoadPersonas(); err != nil {
		slog.Error("persona catalog load failed", slog.String("error", err.Error()))
		panic(err)
	}

	aggregation := telemetry.NewAggregation()

	core := &Core{
		cfg:        cfg,
		httpEngine: gin.New(),
		metrics:    NewMetrics("relay", "core"),
		provider:   provider,
		personas:   personas,
		validator:  security.NewInputValidator(cfg.Chat.MaxMessageLength),
		redactor:   security.NewRedactor(cfg.Chat.RedactionEnabled),
		limiter:    limiter.NewSlidingWindow(cfg.RateLimit.LimiterConfig()),
		telemetry:  aggregation,
		alerts:     telemetry.NewAlerts(aggregation, telemetry.DefaultThresholds()),
	}

	return core
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Provider() llm.ChatProvider {
	return s.provider
}

// SetProvider swaps the outbound chat provider. Test hook.
func (s *Core) SetProvider(p llm.ChatProvider) {
	s.provider = p
}

func (s *Core) Personas() *ai.PersonaCatalog {
	return s.personas
}

func (s *Core) Validator() *security.InputValidator {
	return s.validator
}

func (s *Core) Redactor() *security.Redactor {
	return s.redactor
}

func (s *Core) Limiter() *limiter.SlidingWindow {
	return s.limiter
}

func (s *Core) Telemetry() *telemetry.Aggregation {
	return s.telemetry
}

func (s *Core) Alerts() *telemetry.Alerts {
	return s.alerts
}
