package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medtour")
	t.Setenv("JWT_SECRET", " s3cret ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "medtour-backend", cfg.JWTIssuer)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "/provider/onboarding", cfg.OnboardingPath)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")

	t.Setenv("DATABASE_URL", "postgres://localhost/medtour")
	t.Setenv("JWT_SECRET", "   ")
	_, err = Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadTTL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/medtour")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("JWT_TTL_MINUTES", "15")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)

	t.Setenv("JWT_TTL_MINUTES", "-3")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.JWTTTL)

	t.Setenv("JWT_TTL_MINUTES", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadPlanner(t *testing.T) {
	t.Setenv("PLANNER_API_URL", "https://api.example/")
	t.Setenv("PLANNER_DEBOUNCE_MS", "0")
	cfg, err := LoadPlanner()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example", cfg.APIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce())
	assert.Empty(t, cfg.Token)
}
