package logging

import (
	"log/slog"
	"os"

	"gorm.io/gorm"
)

var stderr = os.Stderr

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// WithDatabase routes ERROR+ records to system_logs as well as stdout.
// The returned handler must be stopped on shutdown to flush its buffer.
func WithDatabase(db *gorm.DB) *PGHandler {
	pg := NewPGHandler(db)
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), pg)))
	return pg
}

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}
