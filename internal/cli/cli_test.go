package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/dyike/CortexHedge/config"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/ollama"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"serve", "analysts", "run", "config", "ollama", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestAnalystsCommand(t *testing.T) {
	out, err := execute(t, "analysts")
	require.NoError(t, err)
	assert.Contains(t, out, consts.WarrenBuffett)
	assert.Contains(t, out, consts.ValuationAnalyst)
	assert.Contains(t, out, "价值投资者")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "CortexHedge dev")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	out, err := execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.Contains(t, out, `"server_addr"`)

	out, err = execute(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")
}

func TestLoadConfigReadsEnvironment(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "sk-env")
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("LLM_PROVIDER", "openai")

	opts := &globalOptions{configPath: filepath.Join(t.TempDir(), "config.json"), debug: true}
	manager, cfg, err := loadConfig(opts, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.DeepSeekAPIKey)
	assert.Equal(t, ":9999", cfg.ServerAddr)
	assert.Equal(t, config.ProviderOpenAI, cfg.LLMProvider)
	assert.True(t, cfg.Debug)
	assert.Equal(t, ":9999", manager.Get().ServerAddr)
}

func TestRunRequiresTickers(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}

func TestRedact(t *testing.T) {
	cfg := config.Config{DeepSeekAPIKey: "sk-123", FinnhubAPIKey: ""}
	r := redact(cfg)
	assert.Equal(t, "***", r.DeepSeekAPIKey)
	assert.Empty(t, r.FinnhubAPIKey)
	assert.Equal(t, "sk-123", cfg.DeepSeekAPIKey)
}

func TestConfigWarnings(t *testing.T) {
	cfg := &config.Config{LLMProvider: config.ProviderDeepSeek, DataProvider: config.DataProviderLongport}
	w := configWarnings(cfg)
	assert.Len(t, w, 3)

	cfg = &config.Config{LLMProvider: config.ProviderOllama, DataProvider: config.DataProviderYahoo, FinnhubAPIKey: "k"}
	assert.Empty(t, configWarnings(cfg))
}

func TestRenderers(t *testing.T) {
	reg := registry.Default()
	assert.Contains(t, renderAnalysts(reg.AgentsList()), consts.PeterLynch)

	out := renderDecisions(&models.HedgeFundResult{Decisions: map[string]*models.Decision{
		"MSFT": {Action: consts.Action_Sell, Quantity: 5, Confidence: 33.3, Reasoning: "r"},
		"AAPL": {Action: consts.Action_Buy, Quantity: 12, Confidence: 61.2},
	}})
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "61.2%")
	assert.Less(t, bytes.Index([]byte(out), []byte("AAPL")), bytes.Index([]byte(out), []byte("MSFT")))
	assert.Contains(t, renderDecisions(nil), "no decisions")

	assert.Empty(t, formatEvent(models.Event{Type: consts.Event_Start}))
	assert.Contains(t, formatEvent(models.Event{Type: consts.Event_Progress, Agent: "warren_buffett_agent", Ticker: "AAPL", Status: consts.Progress_Done}), "warren_buffett_agent [AAPL]")
	assert.Contains(t, formatEvent(models.Event{Type: consts.Event_Error, Message: "boom"}), "boom")

	st := renderOllamaStatus(ollama.Status{ServerURL: "http://localhost:11434", Running: true, AvailableModels: []string{"qwen2.5:7b"}})
	assert.Contains(t, st, "qwen2.5:7b")
}

func TestSelectedKeys(t *testing.T) {
	byName := map[string]string{"沃伦·巴菲特": consts.WarrenBuffett}
	assert.Equal(t, []string{consts.WarrenBuffett}, selectedKeys([]string{"沃伦·巴菲特", "unknown"}, byName))
}
