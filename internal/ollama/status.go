package ollama

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"time"

	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog"
)

// Status is what the frontend shows about the local Ollama install.
type Status struct {
	Installed       bool     `json:"installed"`
	Running         bool     `json:"running"`
	AvailableModels []string `json:"available_models"`
	ServerURL       string   `json:"server_url"`
	Error           string   `json:"error,omitempty"`
}

type Service struct {
	serverURL string
	client    *api.Client
	clientErr error
	lookPath  func(string) (string, error)
	timeout   time.Duration
}

func NewService(serverURL string) *Service {
	client, err := agents.NewOllamaClient(serverURL)
	return &Service{
		serverURL: serverURL,
		client:    client,
		clientErr: err,
		lookPath:  exec.LookPath,
		timeout:   3 * time.Second,
	}
}

// Check never fails; problems are reported in Status.Error.
func (s *Service) Check(ctx context.Context) Status {
	st, _ := s.check(ctx)
	return st
}

// check returns a non-nil error only when the check itself broke. A server
// that does not answer the heartbeat is just not running.
func (s *Service) check(ctx context.Context) (Status, error) {
	st := Status{ServerURL: s.serverURL, AvailableModels: []string{}}
	if _, err := s.lookPath("ollama"); err == nil {
		st.Installed = true
	}
	if s.clientErr != nil {
		st.Error = s.clientErr.Error()
		return st, s.clientErr
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Heartbeat(ctx); err != nil {
		st.Error = err.Error()
		return st, nil
	}
	st.Running = true

	list, err := s.client.List(ctx)
	if err != nil {
		st.Error = err.Error()
		return st, fmt.Errorf("list ollama models: %w", err)
	}
	for _, m := range list.Models {
		st.AvailableModels = append(st.AvailableModels, m.Name)
	}
	sort.Strings(st.AvailableModels)
	return st, nil
}

// LogStatus checks Ollama once at startup. Ollama is optional, so a missing
// or stopped install logs at info. Only a failed check warns.
func (s *Service) LogStatus(ctx context.Context, logger zerolog.Logger) Status {
	st, err := s.check(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("url", st.ServerURL).Msg("ollama status check failed")
		return st
	}
	switch {
	case st.Running:
		logger.Info().Str("url", st.ServerURL).Strs("models", st.AvailableModels).Msg("ollama is running")
	case st.Installed:
		logger.Info().Str("url", st.ServerURL).Str("reason", st.Error).Msg("ollama is installed but not running")
	default:
		logger.Info().Str("url", st.ServerURL).Msg("ollama is not installed")
	}
	return st
}
