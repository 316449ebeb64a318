package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Summarizer connection
	ServerURL      string        `env:"DOCSUM_SERVER_URL"      envDefault:"http://localhost:7860"`
	RequestTimeout time.Duration `env:"DOCSUM_REQUEST_TIMEOUT" envDefault:"0s"`

	// Downloads
	OutputDir string `env:"DOCSUM_OUTPUT_DIR" envDefault:"."`

	// Preflight
	Preflight          bool     `env:"DOCSUM_PREFLIGHT"            envDefault:"true"`
	AcceptedExtensions []string `env:"DOCSUM_ACCEPTED_EXTENSIONS"  envDefault:".pdf,.docx,.txt" envSeparator:","`
	MaxUploadBytes     int64    `env:"DOCSUM_MAX_UPLOAD_BYTES"     envDefault:"209715200"` // 200MB
	ChunkChars         int      `env:"DOCSUM_CHUNK_CHARS"          envDefault:"15000"`

	// Client latency stats
	StatsWindow time.Duration `env:"DOCSUM_STATS_WINDOW" envDefault:"1h"`

	LogLevel string `env:"DOCSUM_LOG_LEVEL" envDefault:"info"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 209715200
	}
	if cfg.ChunkChars <= 0 {
		cfg.ChunkChars = 15000
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}
	cfg.AcceptedExtensions = normalizeExtensions(cfg.AcceptedExtensions)

	return cfg, nil
}

func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("DOCSUM_SERVER_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("DOCSUM_SERVER_URL must be an http(s) URL, got %q", c.ServerURL)
	}
	if u.Host == "" {
		return fmt.Errorf("DOCSUM_SERVER_URL has no host: %q", c.ServerURL)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("DOCSUM_OUTPUT_DIR is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel into a slog level.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("DOCSUM_LOG_LEVEL is invalid: %w", err)
	}
	return lvl, nil
}

// normalizeExtensions lowercases entries and makes sure each starts with a dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
