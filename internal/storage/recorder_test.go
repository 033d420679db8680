package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu        sync.Mutex
	createErr error
	events    []models.Event
	status    string
	result    *models.HedgeFundResult
	runErr    string
}

func (m *memStore) CreateRun(_ context.Context, req models.HedgeFundRequest) (*models.RunRecord, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &models.RunRecord{ID: "run-1", Request: req, Status: consts.State_Running}, nil
}

func (m *memStore) AppendRunEvent(_ context.Context, _ string, ev models.Event) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return len(m.events), nil
}

func (m *memStore) FinishRun(_ context.Context, _ string, status string, result *models.HedgeFundResult, runErr string) error {
	m.status, m.result, m.runErr = status, result, runErr
	return nil
}

func TestRunRecorderKeepsOrder(t *testing.T) {
	store := &memStore{}
	rec, err := NewRunRecorder(context.Background(), store, models.HedgeFundRequest{Tickers: []string{"AAPL"}}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "run-1", rec.RunID())

	for _, status := range []string{"a", "b", "c", "d"} {
		rec.Record(models.Event{Type: consts.Event_Progress, Status: status})
	}
	result := &models.HedgeFundResult{}
	require.NoError(t, rec.Finish(consts.State_Done, result, nil))

	require.Len(t, store.events, 4)
	for i, status := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, status, store.events[i].Status)
	}
	assert.Equal(t, consts.State_Done, store.status)
	assert.Same(t, result, store.result)

	// after Finish
	rec.Record(models.Event{Type: consts.Event_Progress})
	require.NoError(t, rec.Finish(consts.State_Error, nil, errors.New("late")))
	assert.Len(t, store.events, 4)
	assert.Equal(t, consts.State_Done, store.status)
}

func TestRunRecorderErrors(t *testing.T) {
	_, err := NewRunRecorder(context.Background(), nil, models.HedgeFundRequest{}, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewRunRecorder(context.Background(), &memStore{createErr: errors.New("disk full")}, models.HedgeFundRequest{}, zerolog.Nop())
	assert.ErrorContains(t, err, "disk full")

	store := &memStore{}
	rec, err := NewRunRecorder(context.Background(), store, models.HedgeFundRequest{}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, rec.Finish(consts.State_Error, nil, errors.New("boom")))
	assert.Equal(t, consts.State_Error, store.status)
	assert.Equal(t, "boom", store.runErr)
}
