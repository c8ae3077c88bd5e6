package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Web.Port)
	assert.Equal(t, "/api", cfg.Web.ApiPrefix)
	assert.Equal(t, []string{"http://localhost", "http://localhost:5173"}, cfg.Web.AllowOrigins)
	assert.Equal(t, "gpt-3.5-turbo-0125", cfg.OpenAI.Model)
	assert.Equal(t, 0.7, cfg.OpenAI.Temperature)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "prodcatalog.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
web:
  port: 9000
  allow_origins:
    - https://admin.example.com
logger:
  mode: production
openai:
  model: gpt-4o-mini
`), 0o600))

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CATALOG_WEB_PORT", "9100")

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, []string{"https://admin.example.com"}, cfg.Web.AllowOrigins)
	assert.Equal(t, "production", cfg.Logger.Mode)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	// untouched keys keep their defaults
	assert.Equal(t, "/api", cfg.Web.ApiPrefix)
	assert.NoError(t, cfg.Validate())

	// defaults are not mutated by loading
	assert.Equal(t, 8000, DefaultAppConfig.Web.Port)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := *DefaultAppConfig
	assert.ErrorContains(t, cfg.Validate(), "api key")

	cfg.OpenAI.APIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.Web.Port = 0
	assert.ErrorContains(t, cfg.Validate(), "port")
}
