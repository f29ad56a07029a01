package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = "8080"
	DefaultRoundLimit = 30
	DefaultFreshness  = 24 * time.Hour
)

// DefaultAllowedImageDomains are the image hosts the proxy will fetch from.
var DefaultAllowedImageDomains = []string{
	"static.wikia.nocookie.net",
	"vignette.wikia.nocookie.net",
	"upload.wikimedia.org",
	"commons.wikimedia.org",
	"images.unsplash.com",
	"images.pexels.com",
}

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Sheet struct {
		URL             string `yaml:"url"`
		XLSXPath        string `yaml:"xlsx_path"`
		XLSXSheet       string `yaml:"xlsx_sheet"`
		Freshness       string `yaml:"freshness"`
		RefreshInterval string `yaml:"refresh_interval"`
		Timeout         string `yaml:"timeout"`
	} `yaml:"sheet"`
	Round struct {
		Limit int `yaml:"limit"`
	} `yaml:"round"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Proxy struct {
		AllowedDomains []string `yaml:"allowed_domains"`
		Timeout        string   `yaml:"timeout"`
	} `yaml:"proxy"`
	Webhook struct {
		URL     string `yaml:"url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"webhook"`
}

// Load reads YAML config from path and fills defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.Defaults()
	return cfg, nil
}

// Defaults fills unset values. Environment variables fill in secrets and URLs
// that are usually kept out of the config file.
func (c *Config) Defaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Round.Limit <= 0 {
		c.Round.Limit = DefaultRoundLimit
	}
	if len(c.Proxy.AllowedDomains) == 0 {
		c.Proxy.AllowedDomains = DefaultAllowedImageDomains
	}
	if c.Sheet.URL == "" {
		c.Sheet.URL = os.Getenv("SHEET_CSV_URL")
	}
	if c.Webhook.URL == "" {
		c.Webhook.URL = os.Getenv("N8N_WEBHOOK_URL")
	}
	if c.Postgres.URL == "" {
		c.Postgres.URL = os.Getenv("DATABASE_URL")
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
