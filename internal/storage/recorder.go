package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
)

// RunRecorder writes a run's events from one goroutine so the stream never
// waits on the database and seq follows emission order.
type RunRecorder struct {
	store  RunStore
	run    *models.RunRecord
	logger zerolog.Logger

	events chan models.Event
	once   sync.Once
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunRecorder(ctx context.Context, store RunStore, req models.HedgeFundRequest, logger zerolog.Logger) (*RunRecorder, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	run, err := store.CreateRun(ctx, req)
	if err != nil {
		return nil, err
	}

	r := &RunRecorder{
		store:  store,
		run:    run,
		logger: logger.With().Str("run_id", run.ID).Logger(),
		events: make(chan models.Event, 512),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

func (r *RunRecorder) RunID() string { return r.run.ID }

func (r *RunRecorder) loop() {
	defer r.wg.Done()
	ctx := context.Background()
	for ev := range r.events {
		if _, err := r.store.AppendRunEvent(ctx, r.run.ID, ev); err != nil {
			r.logger.Error().Err(err).Str("type", ev.Type).Msg("record run event")
		}
	}
}

// Record queues ev. Events after Finish are dropped.
func (r *RunRecorder) Record(ev models.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	r.events <- ev
}

// Finish drains queued events and stores the final status.
func (r *RunRecorder) Finish(status string, result *models.HedgeFundResult, runErr error) error {
	var err error
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
		r.wg.Wait()

		msg := ""
		if runErr != nil {
			msg = runErr.Error()
		}
		err = r.store.FinishRun(context.Background(), r.run.ID, status, result, msg)
	})
	return err
}
