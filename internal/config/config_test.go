package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 250, cfg.Tutor.MaxQuestionLen)
	assert.Equal(t, 20, cfg.Tutor.MaxHistory)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numlab.yaml")
	content := `
server:
  port: 9090
  allowed_origins: ["https://example.org"]
database:
  driver: postgres
  dsn: postgres://numlab@localhost/numlab
auth:
  session_ttl: 2h
tutor:
  model: local-model
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "local-model", cfg.Tutor.Model)
	assert.Equal(t, 250, cfg.Tutor.MaxQuestionLen, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("TUTOR_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, "sk-test", cfg.Tutor.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Database.Driver = "mysql"
	cfg.Logging.Level = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.driver")
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "numlab.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, cfg.Auth.SessionTTL)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:*")
}
