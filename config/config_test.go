package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  username: "u"
  password: "p"
  host: "db"
  port: "3307"
  database: "menu"
session:
  idleTimeout: 30m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "cart_session_id", cfg.Session.CookieName)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, "u:p@tcp(db:3307)/menu?charset=utf8mb4&parseTime=True&loc=Local", cfg.Database.DSN())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
redis:
  addr: "file:6379"
`)
	t.Setenv("FOODIEHUB_REDIS_ADDR", "env:6379")
	t.Setenv("FOODIEHUB_SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("FOODIEHUB_SESSION_SECURE_COOKIE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.True(t, cfg.Session.SecureCookie)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open config")

	path := writeConfig(t, "redis: [unclosed")
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode config")

	path = writeConfig(t, "log:\n  level: info\n")
	t.Setenv("FOODIEHUB_REDIS_DB", "not-an-int")
	_, err = LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestSetupLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"

	log, err := SetupLogger(cfg)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.SetLevel(logrus.InfoLevel)

	cfg.Log.Level = "loud"
	_, err = SetupLogger(cfg)
	assert.Error(t, err)
}
