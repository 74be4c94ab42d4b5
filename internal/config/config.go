package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	maxSimilarityDistance = 64
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns     int32  `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxConns     int32  `envconfig:"DB_MAX_CONNS" default:"8"`

	NearDupMaxDistance     int    `envconfig:"NEAR_DUP_MAX_DISTANCE" default:"3"`
	NearDupCandidateLimit  int    `envconfig:"NEAR_DUP_CANDIDATE_LIMIT" default:"40"`
	ThinContentMinWords    int    `envconfig:"THIN_CONTENT_MIN_WORDS" default:"0"`
	ThinContentMinWordsMap string `envconfig:"THIN_CONTENT_MIN_WORDS_BY_TYPE" default:""`

	HTTPHost string `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"HTTP_PORT" default:"8090"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DatabaseDriver)) {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) cannot exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.NearDupMaxDistance < 0 || c.NearDupMaxDistance > maxSimilarityDistance {
		return fmt.Errorf("NEAR_DUP_MAX_DISTANCE must be between 0 and %d", maxSimilarityDistance)
	}
	if c.NearDupCandidateLimit < 1 {
		return fmt.Errorf("NEAR_DUP_CANDIDATE_LIMIT must be >= 1")
	}
	if _, err := ParseMinWordsByType(c.ThinContentMinWordsMap); err != nil {
		return fmt.Errorf("THIN_CONTENT_MIN_WORDS_BY_TYPE: %w", err)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// Driver returns the normalized database driver name.
func (c *Config) Driver() string {
	if c == nil {
		return DriverPostgres
	}
	driver := strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	if driver == "" {
		return DriverPostgres
	}
	return driver
}

// MinWordsFor returns the thin-content threshold for a page type. Values <= 0
// mean the check is disabled.
func (c *Config) MinWordsFor(pageType string) int {
	if c == nil {
		return 0
	}
	overrides, err := ParseMinWordsByType(c.ThinContentMinWordsMap)
	if err == nil {
		if v, ok := overrides[normalizePageType(pageType)]; ok {
			return v
		}
	}
	return c.ThinContentMinWords
}

// ParseMinWordsByType parses "guides:40,best:60" into a page type map.
// Later entries for the same page type replace earlier ones.
func ParseMinWordsByType(raw string) (map[string]int, error) {
	parts := strings.Split(raw, ",")
	out := make(map[string]int, len(parts))
	for _, part := range parts {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("entry %q must look like page_type:min_words", entry)
		}
		pageType := normalizePageType(name)
		if pageType == "" {
			return nil, fmt.Errorf("entry %q has an empty page type", entry)
		}
		minWords, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("entry %q has a non-integer minimum: %w", entry, err)
		}
		out[pageType] = minWords
	}
	return out, nil
}

func normalizePageType(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
