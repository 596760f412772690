package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/phuslu/log"

	"github.com/goliatone/go-formruntime/internal/config"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	logger.Info().Str("form", "ignored").Msg("below level")
	logger.Warn().Str("form", "panelcontainer").Int("count", 4).Msg("reloaded")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one entry, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry["level"] != "warn" || entry["form"] != "panelcontainer" || entry["count"] != 4.0 {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNew_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug().Str("form", "prefilled").Msg("loaded")
	if !strings.Contains(buf.String(), "loaded") || !strings.Contains(buf.String(), "prefilled") {
		t.Fatalf("unexpected console output %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]log.Level{
		"":        log.InfoLevel,
		"TRACE":   log.TraceLevel,
		"debug":   log.DebugLevel,
		"warning": log.WarnLevel,
		" error ": log.ErrorLevel,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		if err != nil || got != want {
			t.Fatalf("%q: got %v, %v", name, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected unknown level error")
	}
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
