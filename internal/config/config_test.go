package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerURL != "http://localhost:7860" {
		t.Errorf("expected default server url, got %q", cfg.ServerURL)
	}
	if cfg.OutputDir != "." {
		t.Errorf("expected output dir %q, got %q", ".", cfg.OutputDir)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("expected no request timeout, got %v", cfg.RequestTimeout)
	}
	if !cfg.Preflight {
		t.Errorf("expected preflight enabled by default")
	}
	if cfg.MaxUploadBytes != 200*1024*1024 {
		t.Errorf("expected 200MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ChunkChars != 15000 {
		t.Errorf("expected chunk chars 15000, got %d", cfg.ChunkChars)
	}
	if cfg.StatsWindow != time.Hour {
		t.Errorf("expected stats window 1h, got %v", cfg.StatsWindow)
	}
	want := []string{".pdf", ".docx", ".txt"}
	if len(cfg.AcceptedExtensions) != len(want) {
		t.Fatalf("expected %d extensions, got %v", len(want), cfg.AcceptedExtensions)
	}
	for i, e := range want {
		if cfg.AcceptedExtensions[i] != e {
			t.Errorf("extension[%d]: expected %q, got %q", i, e, cfg.AcceptedExtensions[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DOCSUM_SERVER_URL", "https://sum.example.com/api")
	t.Setenv("DOCSUM_OUTPUT_DIR", "/tmp/out")
	t.Setenv("DOCSUM_REQUEST_TIMEOUT", "45s")
	t.Setenv("DOCSUM_PREFLIGHT", "false")
	t.Setenv("DOCSUM_ACCEPTED_EXTENSIONS", "PDF, md ,,.Txt")
	t.Setenv("DOCSUM_CHUNK_CHARS", "-5")
	t.Setenv("DOCSUM_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ServerURL != "https://sum.example.com/api" {
		t.Errorf("unexpected server url %q", cfg.ServerURL)
	}
	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("unexpected output dir %q", cfg.OutputDir)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("unexpected timeout %v", cfg.RequestTimeout)
	}
	if cfg.Preflight {
		t.Errorf("expected preflight disabled")
	}
	if cfg.ChunkChars != 15000 {
		t.Errorf("expected non-positive chunk chars to fall back to 15000, got %d", cfg.ChunkChars)
	}
	want := []string{".pdf", ".md", ".txt"}
	if len(cfg.AcceptedExtensions) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.AcceptedExtensions)
	}
	for i, e := range want {
		if cfg.AcceptedExtensions[i] != e {
			t.Errorf("extension[%d]: expected %q, got %q", i, e, cfg.AcceptedExtensions[i])
		}
	}

	lvl, err := cfg.Level()
	if err != nil {
		t.Fatalf("unexpected level error: %v", err)
	}
	if lvl != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", lvl)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Setenv("DOCSUM_REQUEST_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	base := Config{ServerURL: "http://localhost:7860", OutputDir: ".", LogLevel: "info"}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cases := map[string]func(c *Config){
		"ftp scheme":    func(c *Config) { c.ServerURL = "ftp://example.com" },
		"no host":       func(c *Config) { c.ServerURL = "http://" },
		"relative url":  func(c *Config) { c.ServerURL = "summarize" },
		"empty out dir": func(c *Config) { c.OutputDir = "  " },
		"bad log level": func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
