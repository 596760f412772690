// Package logging builds the structured logger used by the CLI and the
// preview server. Library packages under pkg/ never log.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/goliatone/go-formruntime/internal/config"
)

// New returns a logger writing to w (stderr when nil) with the configured level
// and format.
func New(cfg config.LoggingConfig, w io.Writer) (*log.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}

	logger := &log.Logger{Level: level}
	switch cfg.Format {
	case "", "console":
		logger.Writer = &log.ConsoleWriter{Writer: w, QuoteString: true}
	case "json":
		logger.Writer = &log.IOWriter{Writer: w}
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	return logger, nil
}

// ParseLevel maps a config level name to a log level.
func ParseLevel(name string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
}

// Discard returns a logger that drops every entry.
func Discard() *log.Logger {
	return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}
