package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. JSON on stdout so log shippers need no
// parsing config.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
