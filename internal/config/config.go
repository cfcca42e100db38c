// Package config provides centralized configuration management for the
// marginalia API server. It loads configuration from CLI flags and environment
// variables, validates required fields, and provides sensible defaults.
//
// CLI flags control which external services are mocked (--no-oidc, --no-ai,
// --test). Environment variables provide secrets and service configuration;
// a .env file is honored via godotenv autoload in main.
package config

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// AI provider names accepted in AI_PROVIDER.
const (
	AIProviderOpenAI = "openai"
	AIProviderMock   = "mock"
)

const defaultAIModel = "gpt-4o-mini"

// Config holds all application configuration.
type Config struct {
	// Server settings
	ListenAddr string

	// Storage
	DatabasePath string // SQLite file path (":memory:" allowed for tests)
	DatabaseKey  string // optional 64 hex chars enabling SQLCipher at-rest encryption

	// Mock service flags (controlled by CLI flags, not env vars)
	NoOIDC bool // If true, accept static test tokens instead of verifying with the IdP
	NoAI   bool // If true, use the deterministic mock assist provider

	// Identity provider
	OIDCIssuer   string // issuer URL used for discovery
	OIDCClientID string // expected token audience

	// Text assist
	AIProvider    string // openai | mock
	AIModel       string
	OpenAIAPIKey  string
	AIRequireAuth bool // gate /api/ai routes behind identity verification

	// CORS allow-list; empty means no cross-origin access
	AllowedOrigins []string
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() (noOIDC, noAI bool, addr string) {
	var testMode bool
	flag.BoolVar(&noOIDC, "no-oidc", false, "Accept static test tokens instead of verifying with the identity provider")
	flag.BoolVar(&noAI, "no-ai", false, "Use the deterministic mock text-assist provider")
	flag.BoolVar(&testMode, "test", false, "Shorthand for --no-oidc --no-ai")
	flag.StringVar(&addr, "addr", "", "Listen address (default :8080, overrides LISTEN_ADDR env var)")
	flag.Parse()

	if testMode {
		noOIDC = true
		noAI = true
	}

	return noOIDC, noAI, addr
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// The addr flag overrides the LISTEN_ADDR env var if non-empty.
func LoadConfig(noOIDC, noAI bool, addr string) (*Config, error) {
	cfg := &Config{}

	cfg.NoOIDC = noOIDC
	cfg.NoAI = noAI

	cfg.ListenAddr = getEnvOrDefault("LISTEN_ADDR", ":8080")
	if addr != "" {
		cfg.ListenAddr = addr
	}

	cfg.DatabasePath = getEnvOrDefault("DATABASE_PATH", "./data/notes.db")
	cfg.DatabaseKey = strings.TrimSpace(os.Getenv("DATABASE_KEY"))

	cfg.OIDCIssuer = getEnvOrDefault("OIDC_ISSUER", "https://accounts.google.com")
	cfg.OIDCClientID = strings.TrimSpace(os.Getenv("OIDC_CLIENT_ID"))

	cfg.AIProvider = strings.ToLower(getEnvOrDefault("AI_PROVIDER", AIProviderOpenAI))
	if noAI {
		cfg.AIProvider = AIProviderMock
	}
	cfg.AIModel = getEnvOrDefault("AI_MODEL", defaultAIModel)
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.AIRequireAuth = parseBoolOrDefault("AI_REQUIRE_AUTH", true)

	cfg.AllowedOrigins = splitOrigins(os.Getenv("ALLOWED_ORIGINS"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
// When mocks are NOT active for a service, the corresponding secrets are required.
func (c *Config) Validate() error {
	var errs []string

	if !c.NoOIDC {
		if c.OIDCIssuer == "" {
			errs = append(errs, "OIDC_ISSUER is required (set env var or use --no-oidc)")
		}
		if c.OIDCClientID == "" {
			errs = append(errs, "OIDC_CLIENT_ID is required (set env var or use --no-oidc)")
		}
	}

	switch c.AIProvider {
	case AIProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required (set env var or use --no-ai)")
		}
	case AIProviderMock:
	default:
		errs = append(errs, fmt.Sprintf("AI_PROVIDER must be %q or %q, got %q", AIProviderOpenAI, AIProviderMock, c.AIProvider))
	}

	if c.DatabasePath == "" {
		errs = append(errs, "DATABASE_PATH must not be empty")
	}

	if c.DatabaseKey != "" {
		if len(c.DatabaseKey) != 64 {
			errs = append(errs, "DATABASE_KEY must be 64 hex characters (32 bytes)")
		} else if _, err := hex.DecodeString(c.DatabaseKey); err != nil {
			errs = append(errs, "DATABASE_KEY must be valid hex")
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "marginalia server starting...")

	if c.NoOIDC {
		fmt.Fprintln(os.Stderr, "  Auth:    Static test tokens (--no-oidc)")
	} else {
		fmt.Fprintf(os.Stderr, "  Auth:    OIDC bearer tokens (issuer: %s)\n", c.OIDCIssuer)
	}

	if c.AIProvider == AIProviderMock {
		fmt.Fprintln(os.Stderr, "  Assist:  Mock provider")
	} else {
		fmt.Fprintf(os.Stderr, "  Assist:  OpenAI (model: %s)\n", c.AIModel)
	}
	if c.AIRequireAuth {
		fmt.Fprintln(os.Stderr, "  AI auth: required")
	} else {
		fmt.Fprintln(os.Stderr, "  AI auth: open")
	}

	if c.DatabaseKey != "" {
		fmt.Fprintf(os.Stderr, "  Store:   %s (encrypted)\n", c.DatabasePath)
	} else {
		fmt.Fprintf(os.Stderr, "  Store:   %s\n", c.DatabasePath)
	}

	if len(c.AllowedOrigins) > 0 {
		fmt.Fprintf(os.Stderr, "  CORS:    %s\n", strings.Join(c.AllowedOrigins, ", "))
	}
	fmt.Fprintf(os.Stderr, "  Listen:  %s\n", c.ListenAddr)
	fmt.Fprintln(os.Stderr, "")
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(strings.TrimSpace(p), "/")
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// MustLoadConfig loads configuration and panics if validation fails.
// Use this in main() when you want the application to fail fast on bad config.
func MustLoadConfig(noOIDC, noAI bool, addr string) *Config {
	cfg, err := LoadConfig(noOIDC, noAI, addr)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}
