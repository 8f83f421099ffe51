package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// MatchingConfig holds the thresholds used by the scanner and importer.
type MatchingConfig struct {
	MinOrganizations int
	MinScore         int
	ImportMinScore   int
	ImportBatchSize  int
	DevelopmentMode  bool
	ScanConcurrency  int
	PhoneRegion      string
	TrustedDomains   []string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL      string
	JWTSecret        string
	Port             string
	MergeAssistURL   string
	TokenTTL         time.Duration
	RateLimitScan    RateLimitConfig
	AutoScanInterval time.Duration
	Matching         MatchingConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		Port:           getEnv("PORT", "8080"),
		MergeAssistURL: os.Getenv("MERGE_ASSIST_URL"),
		TokenTTL:       parseDuration(getEnv("JWT_TTL", "24h"), 24*time.Hour),
		Matching: MatchingConfig{
			MinOrganizations: parseInt(getEnv("MATCH_MIN_ORGANIZATIONS", "2")),
			MinScore:         parseInt(getEnv("MATCH_MIN_SCORE", "50")),
			ImportMinScore:   parseInt(getEnv("IMPORT_MIN_SCORE", "70")),
			ImportBatchSize:  parseInt(getEnv("IMPORT_BATCH_SIZE", "100")),
			DevelopmentMode:  parseBool(getEnv("MATCH_DEV_MODE", "false")),
			ScanConcurrency:  parseInt(getEnv("SCAN_CONCURRENCY", "4")),
			PhoneRegion:      getEnv("PHONE_REGION", "DE"),
			TrustedDomains:   parseList(os.Getenv("TRUSTED_OUTLET_DOMAINS")),
		},
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SCAN", "5/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SCAN value: %w", err)
	}
	cfg.RateLimitScan = rl

	cfg.AutoScanInterval = parseDuration(getEnv("AUTO_SCAN_INTERVAL", "0s"), 0)

	if cfg.Matching.MinOrganizations < 1 {
		return nil, fmt.Errorf("MATCH_MIN_ORGANIZATIONS must be at least 1")
	}
	if cfg.Matching.MinScore < 0 || cfg.Matching.MinScore > 100 {
		return nil, fmt.Errorf("MATCH_MIN_SCORE must be within [0,100]")
	}
	if cfg.Matching.ImportMinScore < 0 || cfg.Matching.ImportMinScore > 100 {
		return nil, fmt.Errorf("IMPORT_MIN_SCORE must be within [0,100]")
	}

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(input string) int {
	v, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0
	}
	return v
}

func parseBool(input string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(input))
	if err != nil {
		return false
	}
	return v
}

func parseList(input string) []string {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
