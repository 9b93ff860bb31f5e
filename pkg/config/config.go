package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Feeds []string `yaml:"feeds"`

	Settings struct {
		ArticleAgeDays   int           `yaml:"article_age_days"`
		SeenArticlesFile string        `yaml:"seen_articles_file"`
		Timeout          time.Duration `yaml:"timeout"`
		UserAgent        string        `yaml:"user_agent"`
		MaxConcurrent    int           `yaml:"max_concurrent"`
	} `yaml:"settings"`

	// cron expression, empty means a single run
	Schedule string `yaml:"schedule"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds digest email delivery settings, enabled when Host is set
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	TLS      bool          `yaml:"tls"`
	StartTLS bool          `yaml:"starttls"`
	From     string        `yaml:"from"`
	To       []string      `yaml:"to"`
	Subject  string        `yaml:"subject"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for settings
	if cfg.Settings.ArticleAgeDays == 0 {
		cfg.Settings.ArticleAgeDays = 7
	}
	if cfg.Settings.SeenArticlesFile == "" {
		cfg.Settings.SeenArticlesFile = "feed-digest-seen.json"
	}
	if cfg.Settings.Timeout == 0 {
		cfg.Settings.Timeout = 20 * time.Second
	}
	if cfg.Settings.UserAgent == "" {
		cfg.Settings.UserAgent = "feed-digest/1.0"
	}
	if cfg.Settings.MaxConcurrent == 0 {
		cfg.Settings.MaxConcurrent = 4
	}

	// set defaults for smtp
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.Subject == "" {
		cfg.SMTP.Subject = "RSS Digest"
	}
	if cfg.SMTP.Timeout == 0 {
		cfg.SMTP.Timeout = 30 * time.Second
	}

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// EmailEnabled reports whether digest delivery over SMTP is configured
func (c *Config) EmailEnabled() bool {
	return c.SMTP.Host != ""
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("feeds list is required")
	}
	if cfg.Settings.ArticleAgeDays < 1 {
		return fmt.Errorf("settings.article_age_days must be positive")
	}
	if cfg.Settings.Timeout < time.Second {
		return fmt.Errorf("settings.timeout must be at least 1 second")
	}

	// scheduled mode emits digests repeatedly, stdout delivery makes no sense there
	if cfg.Schedule != "" && !cfg.EmailEnabled() {
		return fmt.Errorf("smtp delivery is required when schedule is set")
	}

	if cfg.EmailEnabled() {
		if cfg.SMTP.From == "" {
			return fmt.Errorf("smtp.from is required when smtp.host is set")
		}
		if len(cfg.SMTP.To) == 0 {
			return fmt.Errorf("smtp.to is required when smtp.host is set")
		}
	}

	return nil
}
