package core

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LoggingConfig selects the verbosity and decoration of the engine logger.
type LoggingConfig struct {
	Level        string `toml:"level"`
	Prefix       string `toml:"prefix"`
	ReportCaller bool   `toml:"report_caller"`
}

// NewLogger builds the engine logger writing to stderr. Every subsystem
// receives it (or a prefixed child) from the engine context.
func NewLogger(cfg LoggingConfig) *log.Logger {
	return NewLoggerWithWriter(os.Stderr, cfg)
}

func NewLoggerWithWriter(w io.Writer, cfg LoggingConfig) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportCaller:    cfg.ReportCaller,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          cfg.Prefix,
	})
	l.SetLevel(parseLevel(cfg.Level))
	return l
}

// NewNopLogger discards everything. Used by tests and by callers that do
// not care about diagnostics.
func NewNopLogger() *log.Logger {
	return log.New(io.Discard)
}

// parseLevel falls back to info for empty or unknown levels.
func parseLevel(level string) log.Level {
	l, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return log.InfoLevel
	}
	return l
}
