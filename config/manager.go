package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Manager resolves the effective Config from three layers: defaults rooted
// at the config file's directory, the JSON file, then .env and the process
// environment. Only defaults are ever written to disk, so credentials that
// come from the environment stay out of the file.
type Manager struct {
	path     string
	envFile  string
	useEnv   bool
	debounce time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	cfg      Config
	watching bool
}

type managerOptions struct {
	configPath string
	envFile    string
	useEnv     bool
	debounce   time.Duration
	logger     zerolog.Logger
}

type ManagerOption func(*managerOptions)

func NewManager(opts ...ManagerOption) (*Manager, error) {
	options := managerOptions{
		envFile:  ".env",
		useEnv:   true,
		debounce: 300 * time.Millisecond,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	configPath := options.configPath
	if configPath == "" {
		var err error
		configPath, err = defaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	m := &Manager{
		path:     configPath,
		envFile:  options.envFile,
		useEnv:   options.useEnv,
		debounce: options.debounce,
		logger:   options.logger.With().Str("component", "config").Logger(),
	}
	cfg, err := m.load()
	if err != nil {
		return nil, err
	}
	m.cfg = cfg
	m.logger.Debug().Str("path", configPath).Str("llm_provider", cfg.LLMProvider).Msg("config loaded")
	return m, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

// load builds the effective config. A missing file is created with defaults.
func (m *Manager) load() (Config, error) {
	cfg := *DefaultConfigWithRoot(filepath.Dir(m.path))

	data, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", m.path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := writeConfigFile(m.path, cfg); err != nil {
			return Config{}, fmt.Errorf("write initial config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if m.useEnv {
		cfg.applyEnv(EnvLookup(m.envFile))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Watch reloads the config whenever the file changes on disk and calls
// onChange with the new effective value. It returns once the watcher is
// installed; the watcher stops with ctx.
func (m *Manager) Watch(ctx context.Context, onChange func(Config)) error {
	m.mu.Lock()
	if m.watching {
		m.mu.Unlock()
		return errors.New("config is already watched")
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// the directory, because editors replace the file on save
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	go m.watchLoop(ctx, watcher, onChange)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func(Config)) {
	defer watcher.Close()

	var pending <-chan time.Time
	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) == filepath.Clean(m.path) &&
				evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(m.debounce)
			}
		case <-pending:
			pending = nil
			m.reload(onChange)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

// reload keeps the current config when the file on disk is invalid.
func (m *Manager) reload(onChange func(Config)) {
	cfg, err := m.load()
	if err != nil {
		m.logger.Warn().Err(err).Str("path", m.path).Msg("config reload rejected")
		return
	}

	m.mu.Lock()
	changed := !reflect.DeepEqual(m.cfg, cfg)
	m.cfg = cfg
	m.mu.Unlock()
	if !changed {
		return
	}
	m.logger.Info().Str("path", m.path).Msg("config reloaded")
	if onChange != nil {
		onChange(cfg)
	}
}

func defaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, "CortexHedge", "config.json"), nil
}

func writeConfigFile(path string, cfg Config) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	encoder := json.NewEncoder(tmpFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&cfg); err != nil {
		tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("close temp config: %w", err)
	}
	return os.Rename(tmpFile.Name(), path)
}

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir != "" {
			o.configPath = filepath.Join(dir, "config.json")
		}
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

// WithEnvFile reads dotenv values from path instead of ./.env.
func WithEnvFile(path string) ManagerOption {
	return func(o *managerOptions) {
		o.envFile = path
	}
}

// WithoutEnv skips the .env and environment layer.
func WithoutEnv() ManagerOption {
	return func(o *managerOptions) {
		o.useEnv = false
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.logger = logger
	}
}
