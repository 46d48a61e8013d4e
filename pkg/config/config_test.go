package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 1, cfg.Quota.SuperLikesPerDay)
	assert.Equal(t, 54*time.Second, cfg.Realtime.PingInterval)
	assert.Equal(t, int64(4096), cfg.Realtime.MaxMessageSize)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "db:\n  driver: sqlite\n  path: /tmp/cats.db\nquota:\n  super_likes_per_day: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("CATMATCH_JWT_SECRET", "s3cret")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/cats.db", cfg.DB.Path)
	assert.Equal(t, 3, cfg.Quota.SuperLikesPerDay)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
}
