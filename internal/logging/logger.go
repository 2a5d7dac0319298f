package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the global slog logger and returns it.
// Production uses JSON output for log aggregation, everything else the text handler.
func Init(environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(environment, "production") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequest returns a logger carrying the acting user and route.
func WithRequest(logger *slog.Logger, userID, route string) *slog.Logger {
	return logger.With(
		"user_id", userID,
		"route", route,
	)
}
