package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = newLogger(os.Stdout, "")
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "msg"
	zerolog.TimestampFieldName = "ts"
}

// Configure resets the process logger. Development environments get a console writer.
func Configure(env string, level string) {
	var out io.Writer = os.Stdout
	if env == "dev" || env == "local" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}
	mu.Lock()
	base = newLogger(out, level)
	mu.Unlock()
}

// SetOutput redirects JSON log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	base = newLogger(w, "")
	mu.Unlock()
}

// Logger returns a logger scoped to a component.
func Logger(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Info().Fields(fields).Msg(msg)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Warn().Fields(fields).Msg(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	l.Error().Fields(fields).Msg(msg)
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
