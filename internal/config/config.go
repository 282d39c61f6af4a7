package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Upstream site
	ScreenerBaseURL string
	FetchTimeout    time.Duration
	FetchRetries    int
	UserAgents      []string

	// Response body caps
	MaxPageBytes     int64
	MaxDocumentBytes int64

	// Rolling fetch-stats window
	StatsWindow time.Duration
}

// File is the optional YAML config shape, pointed to by CONFIG_FILE.
// Env vars override anything set here.
type File struct {
	Port     string `yaml:"port"`
	Upstream struct {
		BaseURL          string   `yaml:"base_url"`
		TimeoutSeconds   int      `yaml:"timeout_seconds"`
		Retries          int      `yaml:"retries"`
		UserAgents       []string `yaml:"user_agents"`
		MaxPageBytes     int64    `yaml:"max_page_bytes"`
		MaxDocumentBytes int64    `yaml:"max_document_bytes"`
	} `yaml:"upstream"`
}

func Load() (Config, error) {
	cfg := Config{
		Port:             "5000",
		ScreenerBaseURL:  "https://www.screener.in",
		FetchTimeout:     15 * time.Second,
		FetchRetries:     3,
		MaxPageBytes:     10 << 20,
		MaxDocumentBytes: 40 << 20,
		StatsWindow:      time.Hour,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.ScreenerBaseURL = envOr("SCREENER_BASE_URL", cfg.ScreenerBaseURL)
	cfg.FetchTimeout = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FetchRetries = envInt("FETCH_RETRIES", cfg.FetchRetries)
	cfg.MaxPageBytes = envInt64("MAX_PAGE_BYTES", cfg.MaxPageBytes)
	cfg.MaxDocumentBytes = envInt64("MAX_DOCUMENT_BYTES", cfg.MaxDocumentBytes)
	cfg.StatsWindow = envDuration("STATS_WINDOW", cfg.StatsWindow)

	// Browser user-agent strings contain commas, so the env list is
	// newline-separated.
	if v := os.Getenv("USER_AGENTS"); v != "" {
		var agents []string
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				agents = append(agents, line)
			}
		}
		cfg.UserAgents = agents
	}

	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if f.Port != "" {
		c.Port = f.Port
	}
	if f.Upstream.BaseURL != "" {
		c.ScreenerBaseURL = f.Upstream.BaseURL
	}
	if f.Upstream.TimeoutSeconds > 0 {
		c.FetchTimeout = time.Duration(f.Upstream.TimeoutSeconds) * time.Second
	}
	if f.Upstream.Retries > 0 {
		c.FetchRetries = f.Upstream.Retries
	}
	if len(f.Upstream.UserAgents) > 0 {
		c.UserAgents = f.Upstream.UserAgents
	}
	if f.Upstream.MaxPageBytes > 0 {
		c.MaxPageBytes = f.Upstream.MaxPageBytes
	}
	if f.Upstream.MaxDocumentBytes > 0 {
		c.MaxDocumentBytes = f.Upstream.MaxDocumentBytes
	}
	return nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	if !strings.HasPrefix(c.ScreenerBaseURL, "http://") && !strings.HasPrefix(c.ScreenerBaseURL, "https://") {
		return fmt.Errorf("SCREENER_BASE_URL must be an http(s) URL, got %q", c.ScreenerBaseURL)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.FetchRetries <= 0 {
		return fmt.Errorf("FETCH_RETRIES must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
