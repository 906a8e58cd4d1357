package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds server configuration sourced from env vars.
type Config struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	JWTSecret      string   `env:"JWT_SECRET"`
	JWTIssuer      string   `env:"JWT_ISSUER" envDefault:"medtour-backend"`
	JWTTTLMinutes  int      `env:"JWT_TTL_MINUTES" envDefault:"60"`
	CORSOrigins    []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SignInPath     string   `env:"SIGN_IN_PATH" envDefault:"/auth"`
	OnboardingPath string   `env:"ONBOARDING_PATH" envDefault:"/provider/onboarding"`

	// JWTTTL is derived from JWTTTLMinutes by Load.
	JWTTTL time.Duration
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Port = fallback(cfg.Port, "8080")
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.JWTIssuer = fallback(cfg.JWTIssuer, "medtour-backend")
	cfg.CORSOrigins = cleanList(cfg.CORSOrigins)
	cfg.SignInPath = fallback(cfg.SignInPath, "/auth")
	cfg.OnboardingPath = fallback(cfg.OnboardingPath, "/provider/onboarding")

	if cfg.JWTTTLMinutes > 0 {
		cfg.JWTTTL = time.Duration(cfg.JWTTTLMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PlannerConfig configures the trip planner CLI.
type PlannerConfig struct {
	APIURL     string `env:"PLANNER_API_URL" envDefault:"http://localhost:8080"`
	Token      string `env:"PLANNER_TOKEN"`
	CachePath  string `env:"PLANNER_CACHE_PATH" envDefault:".planner-cache.db"`
	DebounceMS int    `env:"PLANNER_DEBOUNCE_MS" envDefault:"500"`
}

// LoadPlanner reads the CLI configuration. A missing token means the planner
// works against the local cache only.
func LoadPlanner() (PlannerConfig, error) {
	var cfg PlannerConfig
	if err := env.Parse(&cfg); err != nil {
		return PlannerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = strings.TrimRight(fallback(cfg.APIURL, "http://localhost:8080"), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.CachePath = fallback(cfg.CachePath, ".planner-cache.db")
	if cfg.DebounceMS <= 0 {
		cfg.DebounceMS = 500
	}
	return cfg, nil
}

// Debounce returns the configured quiet period.
func (c PlannerConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func cleanList(input []string) []string {
	var out []string
	for _, part := range input {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
