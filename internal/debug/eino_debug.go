package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"
	"github.com/dyike/CortexHedge/config"
	"github.com/rs/zerolog"
)

type EinoDebugger struct {
	enabled bool
	port    int
	logger  zerolog.Logger
	init    func(ctx context.Context) error
}

func NewEinoDebugger(cfg *config.Config, logger zerolog.Logger) *EinoDebugger {
	return &EinoDebugger{
		enabled: cfg.EinoDebugEnabled,
		port:    cfg.EinoDebugPort,
		logger:  logger.With().Str("component", "eino_debug").Logger(),
		init: func(ctx context.Context) error {
			return devops.Init(ctx)
		},
	}
}

// Initialize starts the Eino devops server when enabled. It must run before
// any graph is compiled so the graphs register with it.
func (d *EinoDebugger) Initialize(ctx context.Context) error {
	if !d.enabled {
		return nil
	}
	if err := d.init(ctx); err != nil {
		return fmt.Errorf("failed to initialize Eino debug plugin: %w", err)
	}
	d.logger.Info().Str("url", d.URL()).Msg("eino visual debug server started")
	return nil
}

func (d *EinoDebugger) IsEnabled() bool {
	return d.enabled
}

func (d *EinoDebugger) URL() string {
	if !d.enabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.port)
}
