package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("SYNC_WORKERS", "7")
	t.Setenv("REALTIME_DRIVER", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.Server.Address)
	assert.Equal(t, 7, cfg.Sync.Workers)
	assert.Equal(t, "redis", cfg.Realtime.Driver)
	assert.Equal(t, 10*time.Second, cfg.Sync.PushTimeout)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "club",
		Password: "p@ss",
		Name:     "club_db",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://club:p%40ss@db:5432/club_db?sslmode=disable", cfg.DSN())
}
