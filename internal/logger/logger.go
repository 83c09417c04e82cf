package logger

import (
	"log/slog"
	"os"
	"strings"
)

// L is the global structured logger. Initialized once at startup.
var L *slog.Logger = slog.Default()

// Init configures the global JSON logger at the given level.
// Unknown levels fall back to info.
func Init(levelStr string) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	L = slog.New(handler)
	slog.SetDefault(L)
}
