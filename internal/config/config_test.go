package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./media", cfg.MediaDir)
	assert.Equal(t, "/media", cfg.MediaBaseURL)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example/db")
	t.Setenv("PORT", "9999")
	t.Setenv("MEDIA_DIR", "/var/lib/socialite/media")

	cfg := Load()

	assert.Equal(t, "postgres://example/db", cfg.DatabaseURL)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "/var/lib/socialite/media", cfg.MediaDir)
}
