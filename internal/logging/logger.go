package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the application-wide structured logger instance.
var Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
// Output goes to w, or stderr when w is nil.
func InitLogger(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	Logger = slog.New(handler)
	slog.SetDefault(Logger)
	return Logger
}
