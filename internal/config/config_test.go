package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
	assert.Equal(t, 1, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Contains(t, cfg.Backend.BaseURL, "/api")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teachkit.yaml")
	yaml := []byte(`llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.2
server:
  addr: ":9000"
redis:
  ttl: 30m
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o644))

	t.Setenv("TEACHKIT_SERVER_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLLMProviderConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TEACHKIT_LLM_PROVIDER", "openrouter")
	t.Setenv("TEACHKIT_LLM_MODEL", "meta-llama/llama-3.3-70b-instruct")

	cfg, err := Load("")
	require.NoError(t, err)

	lc := cfg.LLMProviderConfig()
	assert.Equal(t, "openrouter", lc.Provider)
	assert.Equal(t, "meta-llama/llama-3.3-70b-instruct", lc.OpenRouter.Model)
	assert.NoError(t, lc.Validate())
}
