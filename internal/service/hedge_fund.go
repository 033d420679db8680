package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/graph"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/internal/storage"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
)

// ErrInvalidRequest marks errors the caller can fix by changing the request.
var ErrInvalidRequest = errors.New("invalid request")

// Runner executes one hedge fund graph run.
type Runner interface {
	Run(ctx context.Context, req *models.HedgeFundRequest, analysts []string, progress graph.ProgressFunc) (*models.HedgeFundResult, error)
}

type FlowGetter interface {
	GetFlow(ctx context.Context, id int64) (*models.Flow, error)
}

// Store is what a run needs from persistence. A nil Store runs without
// recording.
type Store interface {
	storage.RunStore
	FlowGetter
}

// Sink receives every event of a run in emission order. It is never called
// concurrently.
type Sink func(models.Event)

type HedgeFundService struct {
	registry *registry.Registry
	runner   Runner
	store    Store
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHedgeFundService(reg *registry.Registry, runner Runner, store Store, logger zerolog.Logger) *HedgeFundService {
	return &HedgeFundService{
		registry: reg,
		runner:   runner,
		store:    store,
		logger:   logger.With().Str("component", "hedge_fund").Logger(),
		now:      time.Now,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Prepare normalizes req in place and resolves its analysts. Explicit
// selected_agents win over a swarm, and a swarm wins over a flow.
func (s *HedgeFundService) Prepare(ctx context.Context, req *models.HedgeFundRequest) ([]string, error) {
	if req == nil {
		return nil, invalid("request body is required")
	}
	if err := req.Normalize(s.now()); err != nil {
		return nil, invalid("%v", err)
	}

	var keys []string
	switch {
	case len(req.SelectedAgents) > 0:
		keys = req.SelectedAgents
	case strings.TrimSpace(req.Swarm) != "":
		swarm, ok := s.registry.Swarm(strings.TrimSpace(req.Swarm))
		if !ok {
			return nil, invalid("unknown swarm %q", req.Swarm)
		}
		keys = swarm.Agents
	case req.FlowID != 0:
		flowKeys, err := s.flowAnalysts(ctx, req.FlowID)
		if err != nil {
			return nil, err
		}
		keys = flowKeys
	default:
		return nil, invalid("no analysts selected")
	}

	analysts, err := s.registry.Resolve(keys)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return analysts, nil
}

func (s *HedgeFundService) flowAnalysts(ctx context.Context, flowID int64) ([]string, error) {
	if s.store == nil {
		return nil, invalid("flows are unavailable without a database")
	}
	flow, err := s.store.GetFlow(ctx, flowID)
	if err != nil {
		return nil, invalid("%v", err)
	}
	ids, err := flow.AgentNodeIDs()
	if err != nil {
		return nil, invalid("%v", err)
	}
	var keys []string
	for _, id := range ids {
		key, ok := s.registry.KeyForNode(id)
		if !ok {
			s.logger.Warn().Int64("flow_id", flowID).Str("node", id).Msg("flow node is not a registered analyst")
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, invalid("flow %d has no analyst nodes", flowID)
	}
	return keys, nil
}

// Run prepares req, records the run and streams its events to sink. Errors
// from Prepare are returned before any event is sent.
func (s *HedgeFundService) Run(ctx context.Context, req *models.HedgeFundRequest, sink Sink) (string, *models.HedgeFundResult, error) {
	analysts, err := s.Prepare(ctx, req)
	if err != nil {
		return "", nil, err
	}
	if sink == nil {
		sink = func(models.Event) {}
	}

	var (
		rec   *storage.RunRecorder
		runID string
	)
	if s.store != nil {
		rec, err = storage.NewRunRecorder(ctx, s.store, *req, s.logger)
		if err != nil {
			return "", nil, fmt.Errorf("create run: %w", err)
		}
		runID = rec.RunID()
	}

	var mu sync.Mutex
	emit := func(ev models.Event) {
		mu.Lock()
		defer mu.Unlock()
		ev.RunID = runID
		ev.Timestamp = s.now()
		if rec != nil {
			rec.Record(ev)
		}
		sink(ev)
	}

	logger := s.logger.With().Str("run_id", runID).Logger()
	logger.Info().Strs("tickers", req.Tickers).Strs("analysts", analysts).Msg("run started")
	emit(models.Event{Type: consts.Event_Start, Message: strings.Join(analysts, ",")})

	result, runErr := s.runner.Run(ctx, req, analysts, func(agent, ticker, status, message string) {
		emit(models.Event{Type: consts.Event_Progress, Agent: agent, Ticker: ticker, Status: status, Message: message})
	})

	status := consts.State_Done
	if runErr != nil {
		status = consts.State_Error
		logger.Error().Err(runErr).Msg("run failed")
		emit(models.Event{Type: consts.Event_Error, Message: runErr.Error()})
	} else {
		logger.Info().Int("decisions", len(result.Decisions)).Msg("run finished")
		emit(models.Event{Type: consts.Event_Complete, Data: result})
	}

	if rec != nil {
		if err := rec.Finish(status, result, runErr); err != nil {
			logger.Error().Err(err).Msg("finish run")
		}
	}
	return runID, result, runErr
}
