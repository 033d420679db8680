package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/CortexHedge/models"
)

const flowColumns = `id, name, description, nodes, edges, viewport, data, is_template, tags, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFlow(row scanner) (*models.Flow, error) {
	var (
		f                  models.Flow
		nodes, edges, tags string
		viewport, data     sql.NullString
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &nodes, &edges, &viewport, &data, &f.IsTemplate, &tags, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Nodes = json.RawMessage(nodes)
	f.Edges = json.RawMessage(edges)
	if viewport.Valid {
		f.Viewport = json.RawMessage(viewport.String)
	}
	if data.Valid {
		f.Data = json.RawMessage(data.String)
	}
	if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
		return nil, fmt.Errorf("decode flow %d tags: %w", f.ID, err)
	}
	return &f, nil
}

func validateFlow(f *models.Flow) error {
	if f == nil {
		return fmt.Errorf("%w: flow is required", ErrInvalidFlow)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFlow)
	}
	for name, raw := range map[string]json.RawMessage{"nodes": f.Nodes, "edges": f.Edges, "viewport": f.Viewport, "data": f.Data} {
		if len(raw) > 0 && !json.Valid(raw) {
			return fmt.Errorf("%w: %s is not valid JSON", ErrInvalidFlow, name)
		}
	}
	return nil
}

func orEmptyList(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "[]"
	}
	return string(raw)
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	return string(b), err
}

func (s *Store) CreateFlow(ctx context.Context, f *models.Flow) (*models.Flow, error) {
	if err := validateFlow(f); err != nil {
		return nil, err
	}
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO flows (name, description, nodes, edges, viewport, data, is_template, tags, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, f.Name, f.Description, orEmptyList(f.Nodes), orEmptyList(f.Edges), nullString(f.Viewport), nullString(f.Data), f.IsTemplate, tags, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert flow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert flow id: %w", err)
	}
	return s.GetFlow(ctx, id)
}

func (s *Store) GetFlow(ctx context.Context, id int64) (*models.Flow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+flowColumns+` FROM flows WHERE id = ?`, id)
	f, err := scanFlow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flow %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get flow: %w", err)
	}
	return f, nil
}

// ListFlows returns summaries, newest update first.
func (s *Store) ListFlows(ctx context.Context, includeTemplates bool) ([]models.FlowSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, description, is_template, tags, created_at, updated_at
FROM flows
WHERE (? OR is_template = 0)
ORDER BY updated_at DESC, id DESC
`, includeTemplates)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	flows := []models.FlowSummary{}
	for rows.Next() {
		var (
			f    models.FlowSummary
			tags string
		)
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.IsTemplate, &tags, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &f.Tags); err != nil {
			return nil, fmt.Errorf("decode flow %d tags: %w", f.ID, err)
		}
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list flows rows: %w", err)
	}
	return flows, nil
}

// UpdateFlow replaces every editable field of flow id.
func (s *Store) UpdateFlow(ctx context.Context, id int64, f *models.Flow) (*models.Flow, error) {
	if err := validateFlow(f); err != nil {
		return nil, err
	}
	tags, err := encodeTags(f.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE flows
SET name = ?, description = ?, nodes = ?, edges = ?, viewport = ?, data = ?, is_template = ?, tags = ?, updated_at = ?
WHERE id = ?
`, f.Name, f.Description, orEmptyList(f.Nodes), orEmptyList(f.Edges), nullString(f.Viewport), nullString(f.Data), f.IsTemplate, tags, s.now(), id)
	if err != nil {
		return nil, fmt.Errorf("update flow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("flow %d: %w", id, ErrNotFound)
	}
	return s.GetFlow(ctx, id)
}

func (s *Store) DeleteFlow(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("flow %d: %w", id, ErrNotFound)
	}
	return nil
}

// DuplicateFlow copies flow id as a non-template. An empty name becomes
// "<name> (副本)".
func (s *Store) DuplicateFlow(ctx context.Context, id int64, name string) (*models.Flow, error) {
	src, err := s.GetFlow(ctx, id)
	if err != nil {
		return nil, err
	}
	dup := *src
	dup.Name = strings.TrimSpace(name)
	if dup.Name == "" {
		dup.Name = src.Name + " (副本)"
	}
	dup.IsTemplate = false
	return s.CreateFlow(ctx, &dup)
}
