package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

// Run executes fn and converts any panic into an error log with a
// bounded stack trace, keeping one bad request from taking the
// process down.
func Run(fn func()) {
	RunWithComponent(fn, "safe.Run")
}

func RunWithComponent(fn func(), component string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", component),
				slog.String("stack", formatStack()),
			)
		}
	}()

	fn()
}

// LogPanic records a recovered panic value for callers that manage
// their own recover, like HTTP middleware.
func LogPanic(recovered any, component string) {
	slog.Error("panic recovered",
		slog.Any("recover", recovered),
		slog.String("component", component),
		slog.String("stack", formatStack()),
	)
}

const maxStackFrames = 20

func formatStack() string {
	lines := strings.Split(string(debug.Stack()), "\n")

	var formatted []string
	for i, line := range lines {
		if i >= maxStackFrames {
			formatted = append(formatted, "  ... (truncated)")
			break
		}
		if line = strings.TrimSpace(line); line != "" {
			formatted = append(formatted, "  "+line)
		}
	}
	return strings.Join(formatted, "\n")
}
