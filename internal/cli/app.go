package cli

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/dyike/CortexHedge/config"
	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/internal/graph"
	"github.com/dyike/CortexHedge/internal/logging"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/internal/service"
	"github.com/dyike/CortexHedge/internal/storage/sqlite"
	"github.com/rs/zerolog"
)

type globalOptions struct {
	configPath string
	debug      bool
}

// app holds everything a command needs. It is built once per invocation.
type app struct {
	manager  *config.Manager
	cfg      *config.Config
	logger   zerolog.Logger
	registry *registry.Registry
	data     *dataflows.Interface
	store    *sqlite.Store
	service  *service.HedgeFundService
}

// bootstrapLogger logs until the effective config is known. It honours
// LOG_LEVEL and HEDGE_FUND_DEBUG from .env and the environment.
func bootstrapLogger(opts *globalOptions) zerolog.Logger {
	cfg := config.DefaultConfig()
	if opts.debug {
		cfg.Debug = true
	}
	return logging.New(cfg)
}

func loadConfig(opts *globalOptions, logger zerolog.Logger) (*config.Manager, *config.Config, error) {
	managerOpts := []config.ManagerOption{config.WithLogger(logger)}
	if opts.configPath != "" {
		managerOpts = append(managerOpts, config.WithConfigPath(opts.configPath))
	}
	manager, err := config.NewManager(managerOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg := manager.Get()
	if opts.debug {
		cfg.Debug = true
	}
	return manager, &cfg, nil
}

func newApp(opts *globalOptions) (*app, error) {
	manager, cfg, err := loadConfig(opts, bootstrapLogger(opts))
	if err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger := logging.New(cfg)
	data, err := dataflows.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init market data: %w", err)
	}
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("init sqlite: %w", err)
	}

	reg := registry.Default()
	// read through the manager so edits picked up by Watch apply to the next run
	newModel := func(ctx context.Context, spec agents.ModelSpec) (model.BaseChatModel, error) {
		current := manager.Get()
		return agents.NewChatModel(ctx, &current, spec)
	}
	g := graph.NewHedgeFundGraph(reg, data, newModel, cfg.InitialCash, logger)

	return &app{
		manager:  manager,
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		data:     data,
		store:    store,
		service:  service.NewHedgeFundService(reg, g, store, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close sqlite")
	}
	a.data.Close()
}
