package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT", "")
	t.Setenv("DEFAULT_SECTOR_SIZE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Equal(t, 10.0, cfg.Geometry.SectorSize)
	assert.Equal(t, 36, cfg.Geometry.SectorCount)
	assert.True(t, cfg.Geometry.IsEqualArea)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", ":9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("RATE_WINDOW", "30s")
	t.Setenv("DEFAULT_SECTOR_SIZE", "15")
	t.Setenv("DEFAULT_EQUAL_AREA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.Equal(t, 15.0, cfg.Geometry.SectorSize)
	assert.Equal(t, 0, cfg.Geometry.SectorCount, "derived by the geometry model")
	assert.False(t, cfg.Geometry.IsEqualArea)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"zero rate limit", map[string]string{"JWT_SECRET": "x", "RATE_LIMIT": "0"}},
		{"bad sector size", map[string]string{"JWT_SECRET": "x", "DEFAULT_SECTOR_SIZE": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
