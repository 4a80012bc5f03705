package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9090},
		"security": {"jwt_secret": "from-file"},
		"assistant": {"daily_limit": 3, "counter_backend": "redis"}
	}`), 0o600))

	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_HOST", "db.internal")
	t.Setenv("ASSISTANT_DAILY_LIMIT", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-file", cfg.Security.JWTSecret)
	assert.Equal(t, 7, cfg.Assistant.DailyLimit)
	assert.Equal(t, "redis", cfg.Assistant.CounterBackend)
	assert.Equal(t, 1200, cfg.Assistant.MaxAnswerChars)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateCounterBackend(t *testing.T) {
	cfg := Default()
	cfg.Security.JWTSecret = "secret"
	cfg.Assistant.CounterBackend = "memcached"
	assert.Error(t, cfg.Validate())

	cfg.Assistant.CounterBackend = "mongo"
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseURL(t *testing.T) {
	db := DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", db.GetDatabaseURL())

	srv := ServerConfig{Host: "0.0.0.0", Port: 8080}
	assert.Equal(t, "0.0.0.0:8080", srv.GetServerAddr())
}

func TestLoadConfigDurations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"read_timeout": "15s", "write_timeout": 2000000000},
		"security": {"jwt_secret": "s", "token_ttl": "2h"},
		"assistant": {"timeout": "750ms"}
	}`), 0o600))
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ASSISTANT_TIMEOUT", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout.Duration)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout.Duration)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout.Duration)
	assert.Equal(t, 2*time.Hour, cfg.Security.TokenTTL.Duration)
	assert.Equal(t, 750*time.Millisecond, cfg.Assistant.Timeout.Duration)
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration{90 * time.Second})
	require.NoError(t, err)
	assert.JSONEq(t, `"1m30s"`, string(out))
}
