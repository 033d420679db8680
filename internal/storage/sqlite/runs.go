package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/models"
	"github.com/google/uuid"
)

// RunPage is one page of runs, newest first. NextCursor is 0 on the last
// page.
type RunPage struct {
	Runs       []models.RunRecord `json:"runs"`
	NextCursor int64              `json:"next_cursor,omitempty"`
}

func (s *Store) CreateRun(ctx context.Context, req models.HedgeFundRequest) (*models.RunRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode run request: %w", err)
	}
	now := s.now()
	rec := &models.RunRecord{
		ID:        uuid.NewString(),
		Request:   req,
		Status:    consts.State_Running,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs (id, request, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
`, rec.ID, string(body), rec.Status, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

// FinishRun records the final status with either a result or an error.
func (s *Store) FinishRun(ctx context.Context, runID, status string, result *models.HedgeFundResult, runErr string) error {
	var encoded sql.NullString
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode run result: %w", err)
		}
		encoded = sql.NullString{String: string(b), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE runs
SET status = ?, result = ?, error = ?, updated_at = ?
WHERE id = ?
`, status, encoded, runErr, s.now(), runID)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// AppendRunEvent stores ev with the next seq for the run and returns it.
func (s *Store) AppendRunEvent(ctx context.Context, runID string, ev models.Event) (int, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return 0, fmt.Errorf("encode run event: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM run_events WHERE run_id = ?`, runID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO run_events (run_id, seq, event, created_at)
VALUES (?, ?, ?, ?)
`, runID, seq, string(body), s.now()); err != nil {
		return 0, fmt.Errorf("insert run event: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run event: %w", err)
	}
	return seq, nil
}

const runColumns = `rowid, id, request, status, result, error, created_at, updated_at`

func scanRun(row scanner) (int64, *models.RunRecord, error) {
	var (
		rowID   int64
		rec     models.RunRecord
		request string
		result  sql.NullString
	)
	if err := row.Scan(&rowID, &rec.ID, &request, &rec.Status, &result, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return 0, nil, err
	}
	if err := json.Unmarshal([]byte(request), &rec.Request); err != nil {
		return 0, nil, fmt.Errorf("decode run %s request: %w", rec.ID, err)
	}
	if result.Valid {
		rec.Result = &models.HedgeFundResult{}
		if err := json.Unmarshal([]byte(result.String), rec.Result); err != nil {
			return 0, nil, fmt.Errorf("decode run %s result: %w", rec.ID, err)
		}
	}
	return rowID, &rec, nil
}

// ListRuns pages by rowid, newest first. cursor 0 starts at the newest run.
func (s *Store) ListRuns(ctx context.Context, cursor int64, limit int) (*RunPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT `+runColumns+`
FROM runs
WHERE (? = 0 OR rowid < ?)
ORDER BY rowid DESC
LIMIT ?
`, cursor, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	page := &RunPage{Runs: []models.RunRecord{}}
	var lastRowID int64
	for rows.Next() {
		rowID, rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if len(page.Runs) == limit {
			page.NextCursor = lastRowID
			break
		}
		page.Runs = append(page.Runs, *rec)
		lastRowID = rowID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs rows: %w", err)
	}
	return page, nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*models.RunWithEvents, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("run id is required")
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	_, rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	events, err := s.ListRunEvents(ctx, runID)
	if err != nil {
		return nil, err
	}
	return &models.RunWithEvents{RunRecord: *rec, Events: events}, nil
}

func (s *Store) ListRunEvents(ctx context.Context, runID string) ([]models.RunEventRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, seq, event, created_at
FROM run_events
WHERE run_id = ?
ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run events: %w", err)
	}
	defer rows.Close()

	events := []models.RunEventRecord{}
	for rows.Next() {
		var (
			rec  models.RunEventRecord
			body string
		)
		if err := rows.Scan(&rec.RunID, &rec.Seq, &body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		if err := json.Unmarshal([]byte(body), &rec.Event); err != nil {
			return nil, fmt.Errorf("decode run event %d: %w", rec.Seq, err)
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run events rows: %w", err)
	}
	return events, nil
}
