package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			Mode:            "release",
		},
		Forms:   FormsConfig{Dir: "forms", Watch: true, DefaultMinOccur: 0, DefaultInitialOccur: 1},
		Render:  RenderConfig{Lang: "en"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formrt.yaml")
	content := `
server:
  addr: 127.0.0.1:9000
  read_timeout: 2s
forms:
  dir: ./definitions
  default_min_occur: 1
logging:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FORMRT_LOGGING_LEVEL", "debug")
	t.Setenv("FORMRT_FORMS_WATCH", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ReadTimeout != 2*time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Fatalf("defaults must fill missing keys, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Forms.Dir != "./definitions" || cfg.Forms.DefaultMinOccur != 1 || cfg.Forms.Watch {
		t.Fatalf("unexpected forms config %+v", cfg.Forms)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "forms:\n  default_min_occur: -1\nlogging:\n  format: xml\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"default_min_occur", "logging.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}
