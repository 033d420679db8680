package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/CortexHedge/config"
)

func resetGlobalLevel(t *testing.T) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })
}

func TestNewWithWriterLevels(t *testing.T) {
	resetGlobalLevel(t)
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := NewWithWriter(cfg, &buf)
	logger.Info().Msg("dropped")
	logger.Warn().Str("component", "ollama").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "ollama", entry["component"])
	assert.Equal(t, "kept", entry["message"])
}

func TestNewWithWriterBadLevelDefaultsToInfo(t *testing.T) {
	resetGlobalLevel(t)
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.LogLevel = "loud"

	var buf bytes.Buffer
	logger := NewWithWriter(cfg, &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDebugUsesConsoleWriter(t *testing.T) {
	resetGlobalLevel(t)
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.Debug = true

	var buf bytes.Buffer
	logger := NewWithWriter(cfg, &buf)
	logger.Debug().Msg("graph compiled")

	assert.Contains(t, buf.String(), "graph compiled")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestGlobalLevelChangesApplyToBuiltLogger(t *testing.T) {
	resetGlobalLevel(t)
	cfg := config.DefaultConfigWithRoot(t.TempDir())

	var buf bytes.Buffer
	logger := NewWithWriter(cfg, &buf)
	logger.Debug().Msg("before")
	assert.NotContains(t, buf.String(), "before")

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger.Debug().Msg("lowered")
	assert.Contains(t, buf.String(), "lowered")

	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	logger.Warn().Msg("raised")
	assert.NotContains(t, buf.String(), "raised")
}

func TestLevel(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	assert.Equal(t, zerolog.InfoLevel, Level(cfg))

	cfg.LogLevel = "error"
	assert.Equal(t, zerolog.ErrorLevel, Level(cfg))

	cfg.Debug = true
	assert.Equal(t, zerolog.DebugLevel, Level(cfg))

	cfg.LogLevel = "trace"
	assert.Equal(t, zerolog.TraceLevel, Level(cfg))
}
