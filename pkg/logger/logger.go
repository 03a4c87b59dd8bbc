package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Init builds the process logger on stdout and installs it as the slog default.
func Init(format, level string) {
	defaultLogger = New(os.Stdout, format, level)
	slog.SetDefault(defaultLogger)
}

// New builds a logger writing to w. format is "json" or "text"; level is one
// of debug, info, warn, error. Fields attached with With are added to every
// record logged through a *Context method.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(contextHandler{handler})
}

// InitForEnv keeps the environment shortcut used by the CLI before config is loaded.
func InitForEnv(env string) {
	if env == "production" {
		Init("json", "info")
		return
	}
	Init("text", "debug")
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		InitForEnv("development")
	}
	return defaultLogger
}

// L is shorthand for LoggerWrapper.
func L() *slog.Logger {
	return LoggerWrapper()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
