package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	MigrationsPath   string
	MembershipURL    string
	CurriculumURL    string
	AuthTokens       map[string]string // bearer token -> member ID
	DefaultLocale    string
	DiscordToken     string // optional; enables the chapter-channel notifier
	DiscordChannelID string
	ReconcileGrace   time.Duration
}

// Load reads the configuration from environment variables and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env is optional when variables come from the environment
		// (Docker, CI, etc.).
	}

	cfg := &Config{
		Port:             envOrDefault("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		MigrationsPath:   envOrDefault("MIGRATIONS_PATH", "internal/infrastructure/database/migrations"),
		MembershipURL:    os.Getenv("MEMBERSHIP_URL"),
		CurriculumURL:    os.Getenv("CURRICULUM_URL"),
		AuthTokens:       parseAuthTokens(os.Getenv("AUTH_TOKENS")),
		DefaultLocale:    envOrDefault("DEFAULT_LOCALE", "en"),
		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),
		ReconcileGrace:   24 * time.Hour,
	}
	if raw := os.Getenv("RECONCILE_GRACE"); raw != "" {
		grace, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: RECONCILE_GRACE invalid (%q): %w", raw, err)
		}
		cfg.ReconcileGrace = grace
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate applies all the rules on the loaded configuration.
func (c *Config) validate() error {
	for _, r := range c.Port {
		if r < '0' || r > '9' {
			return fmt.Errorf("config: PORT must be numeric")
		}
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Useful local default when DATABASE_URL is not provided.
		c.DatabaseURL = "postgres://localhost:5432/chapterhall?sslmode=disable"
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: DATABASE_URL invalid (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: DATABASE_URL invalid (%q): missing scheme or host", c.DatabaseURL)
	}

	if strings.TrimSpace(c.MembershipURL) == "" {
		return fmt.Errorf("config: MEMBERSHIP_URL is required")
	}

	if c.DiscordToken != "" && strings.TrimSpace(c.DiscordChannelID) == "" {
		return fmt.Errorf("config: DISCORD_CHANNEL_ID is required when DISCORD_TOKEN is set")
	}

	return nil
}

// parseAuthTokens parses "token:memberID,token:memberID" pairs.
func parseAuthTokens(raw string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			tokens[parts[0]] = parts[1]
		}
	}
	return tokens
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
