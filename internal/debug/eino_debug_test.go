package debug

import (
	"context"
	"errors"
	"testing"

	"github.com/dyike/CortexHedge/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEinoDebuggerDisabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	d := NewEinoDebugger(cfg, zerolog.Nop())
	d.init = func(context.Context) error {
		t.Fatal("init must not run when disabled")
		return nil
	}

	require.NoError(t, d.Initialize(context.Background()))
	assert.False(t, d.IsEnabled())
	assert.Empty(t, d.URL())
}

func TestEinoDebuggerEnabled(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.EinoDebugEnabled = true
	cfg.EinoDebugPort = 52538

	d := NewEinoDebugger(cfg, zerolog.Nop())
	calls := 0
	d.init = func(context.Context) error {
		calls++
		return nil
	}
	require.NoError(t, d.Initialize(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, "http://localhost:52538", d.URL())

	d.init = func(context.Context) error { return errors.New("port in use") }
	assert.ErrorContains(t, d.Initialize(context.Background()), "port in use")
}
