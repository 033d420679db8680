package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "hedge_fund.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesTables(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, table := range []string{"flows", "runs", "run_events"} {
		var name string
		err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}
	// idempotent
	require.NoError(t, s.CreateTables(ctx))
	require.NoError(t, s.Ping(ctx))

	_, err := Open("  ")
	assert.Error(t, err)
}

func TestFlowCRUD(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateFlow(ctx, &models.Flow{
		Name:     "科技股",
		Nodes:    json.RawMessage(`[{"id":"warren_buffett_abc123","type":"agent-node"}]`),
		Viewport: json.RawMessage(`{"x":0,"y":0,"zoom":1}`),
		Tags:     []string{"tech"},
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.JSONEq(t, `[]`, string(created.Edges))
	assert.Nil(t, created.Data)
	assert.Equal(t, []string{"tech"}, created.Tags)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetFlow(ctx, created.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(created.Nodes), string(got.Nodes))

	got.Name = "科技股 v2"
	got.IsTemplate = true
	updated, err := s.UpdateFlow(ctx, created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "科技股 v2", updated.Name)
	assert.True(t, updated.IsTemplate)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	dup, err := s.DuplicateFlow(ctx, created.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, dup.ID)
	assert.Equal(t, "科技股 v2 (副本)", dup.Name)
	assert.False(t, dup.IsTemplate)

	all, err := s.ListFlows(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	nonTemplates, err := s.ListFlows(ctx, false)
	require.NoError(t, err)
	require.Len(t, nonTemplates, 1)
	assert.Equal(t, dup.ID, nonTemplates[0].ID)

	require.NoError(t, s.DeleteFlow(ctx, created.ID))
	_, err = s.GetFlow(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteFlow(ctx, created.ID), ErrNotFound)
	_, err = s.UpdateFlow(ctx, created.ID, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFlowValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateFlow(ctx, &models.Flow{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidFlow)
	_, err = s.CreateFlow(ctx, &models.Flow{Name: "x", Nodes: json.RawMessage(`[`)})
	assert.ErrorIs(t, err, ErrInvalidFlow)
	_, err = s.CreateFlow(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidFlow)
}

func TestRunLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	req := models.HedgeFundRequest{Tickers: []string{"AAPL"}, SelectedAgents: []string{consts.WarrenBuffett}}
	run, err := s.CreateRun(ctx, req)
	require.NoError(t, err)
	assert.Len(t, run.ID, 36)
	assert.Equal(t, consts.State_Running, run.Status)

	for i, status := range []string{consts.Progress_Analyzing, consts.Progress_Done} {
		seq, err := s.AppendRunEvent(ctx, run.ID, models.Event{Type: consts.Event_Progress, Agent: consts.WarrenBuffett, Ticker: "AAPL", Status: status})
		require.NoError(t, err)
		assert.Equal(t, i+1, seq)
	}

	result := &models.HedgeFundResult{
		Decisions: map[string]*models.Decision{"AAPL": {Action: consts.Action_Buy, Quantity: 3, Confidence: 55}},
	}
	require.NoError(t, s.FinishRun(ctx, run.ID, consts.State_Done, result, ""))
	assert.ErrorIs(t, s.FinishRun(ctx, "missing", consts.State_Done, nil, ""), ErrNotFound)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, consts.State_Done, got.Status)
	assert.Equal(t, req.Tickers, got.Request.Tickers)
	require.NotNil(t, got.Result)
	assert.Equal(t, int64(3), got.Result.Decisions["AAPL"].Quantity)
	require.Len(t, got.Events, 2)
	assert.Equal(t, 1, got.Events[0].Seq)
	assert.Equal(t, consts.Progress_Analyzing, got.Events[0].Event.Status)
	assert.Equal(t, consts.Progress_Done, got.Events[1].Event.Status)

	_, err = s.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRunsPagination(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		run, err := s.CreateRun(ctx, models.HedgeFundRequest{Tickers: []string{fmt.Sprintf("T%d", i)}})
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	first, err := s.ListRuns(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, first.Runs, 2)
	assert.Equal(t, ids[4], first.Runs[0].ID)
	assert.Equal(t, ids[3], first.Runs[1].ID)
	require.NotZero(t, first.NextCursor)

	second, err := s.ListRuns(ctx, first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Runs, 2)
	assert.Equal(t, ids[2], second.Runs[0].ID)

	last, err := s.ListRuns(ctx, second.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, last.Runs, 1)
	assert.Equal(t, ids[0], last.Runs[0].ID)
	assert.Zero(t, last.NextCursor)
}
