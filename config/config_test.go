package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigWithRoot(t *testing.T) {
	cfg := DefaultConfigWithRoot("/srv/fund")
	assert.Equal(t, filepath.Join("/srv/fund", "data", "cache"), cfg.DataCacheDir)
	assert.Equal(t, ":8000", cfg.ServerAddr)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSAllowedOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "OLLAMA")
	t.Setenv("OLLAMA_HOST", "http://10.0.0.2:11434")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("INITIAL_CASH", "2500.5")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("MAX_TOKENS", "not-a-number")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.applyEnv(os.Getenv)

	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "http://10.0.0.2:11434", cfg.OllamaURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 2500.5, cfg.InitialCash)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 4096, cfg.MaxTokens, "unparsable values keep the default")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.DataProvider = "bloomberg"
	cfg.InitialCash = 0
	cfg.ServerAddr = " "

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bloomberg")
	assert.Contains(t, err.Error(), "initial cash")
	assert.Contains(t, err.Error(), "server address")
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfigWithRoot(root)
	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.DataCacheDir)
	assert.DirExists(t, filepath.Dir(cfg.DBPath))
}

func TestEnvLookupPrefersProcessEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINNHUB_API_KEY=from-file\nLLM_PROVIDER=openai\n"), 0o600))
	t.Setenv("LLM_PROVIDER", "ollama")

	cfg := DefaultConfigWithRoot(t.TempDir())
	cfg.applyEnv(EnvLookup(envFile))
	assert.Equal(t, "from-file", cfg.FinnhubAPIKey)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)

	// a missing file only leaves the process environment
	cfg = DefaultConfigWithRoot(t.TempDir())
	cfg.applyEnv(EnvLookup(filepath.Join(t.TempDir(), "absent.env")))
	assert.Empty(t, cfg.FinnhubAPIKey)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
}
