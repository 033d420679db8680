package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(WithConfigDir(dir), WithoutEnv())
	require.NoError(t, err)

	path := filepath.Join(dir, "config.json")
	assert.Equal(t, path, mgr.Path())

	var onDisk Config
	data, err := os.ReadFile(path)
	require.NoError(t, err, "config file not created")
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, *DefaultConfigWithRoot(dir), onDisk)
	assert.Equal(t, filepath.Join(dir, "data", "hedge_fund.db"), mgr.Get().DBPath)
}

func TestManagerLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_addr":":9000","llm_provider":"ollama"}`), 0o600))

	mgr, err := NewManager(WithConfigPath(path), WithoutEnv())
	require.NoError(t, err)
	cfg := mgr.Get()
	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, 100000.0, cfg.InitialCash, "fields absent from the file keep their default")
}

func TestManagerAppliesEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_addr":":9000"}`), 0o600))
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINNHUB_API_KEY=fh-from-dotenv\nLLM_PROVIDER=ollama\n"), 0o600))

	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("LLM_PROVIDER", "openai")

	mgr, err := NewManager(WithConfigPath(path), WithEnvFile(envFile))
	require.NoError(t, err)
	cfg := mgr.Get()
	assert.Equal(t, "sk-test", cfg.DeepSeekAPIKey)
	assert.Equal(t, ":9999", cfg.ServerAddr, "environment wins over the file")
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider, "environment wins over .env")
	assert.Equal(t, "fh-from-dotenv", cfg.FinnhubAPIKey)

	// credentials are never persisted
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "sk-test")
}

func TestManagerRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"llm_provider":"carrier-pigeon"}`), 0o600))
	_, err := NewManager(WithConfigPath(path), WithoutEnv())
	assert.ErrorContains(t, err, "carrier-pigeon")

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err = NewManager(WithConfigPath(path), WithoutEnv())
	assert.ErrorContains(t, err, "decode config")
}

func TestManagerWatchReloads(t *testing.T) {
	dir := t.TempDir()
	logs := &lockedBuffer{}
	logger := zerolog.New(logs)
	mgr, err := NewManager(WithConfigDir(dir), WithoutEnv(), WithDebounce(50*time.Millisecond), WithLogger(logger))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 4)
	require.NoError(t, mgr.Watch(ctx, func(cfg Config) { reloaded <- cfg }))
	assert.Error(t, mgr.Watch(ctx, nil), "second watch")

	// an invalid edit keeps the current config
	require.NoError(t, os.WriteFile(mgr.Path(), []byte(`{"llm_provider":"carrier-pigeon"}`), 0o600))
	require.Eventually(t, func() bool {
		return logs.contains("config reload rejected")
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, ProviderDeepSeek, mgr.Get().LLMProvider)

	cfg := mgr.Get()
	cfg.ModelName = "gpt-4o"
	cfg.LLMProvider = ProviderOpenAI
	require.NoError(t, writeConfigFile(mgr.Path(), cfg))

	select {
	case got := <-reloaded:
		assert.Equal(t, "gpt-4o", got.ModelName)
		assert.Equal(t, ProviderOpenAI, mgr.Get().LLMProvider)
	case <-time.After(2 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Contains(b.buf.Bytes(), []byte(s))
}
