package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Default returns a structured logger for a component, writing to stderr.
// The level is controlled by TAGNAV_LOG_LEVEL (debug, info, warn, error);
// it defaults to info.
func Default(component string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFromEnv(),
	})
	return slog.New(handler).With("component", component)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("TAGNAV_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
