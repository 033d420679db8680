package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const AgentNodeType = "agent-node"

// Flow is a saved canvas. Nodes, edges, viewport and data belong to the
// frontend and are stored verbatim.
type Flow struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Nodes       json.RawMessage `json:"nodes"`
	Edges       json.RawMessage `json:"edges"`
	Viewport    json.RawMessage `json:"viewport,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	IsTemplate  bool            `json:"is_template"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type FlowSummary struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsTemplate  bool      `json:"is_template"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type flowNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// AgentNodeIDs returns the ids of every analyst node on the canvas.
func (f *Flow) AgentNodeIDs() ([]string, error) {
	if len(f.Nodes) == 0 {
		return nil, nil
	}
	var nodes []flowNode
	if err := json.Unmarshal(f.Nodes, &nodes); err != nil {
		return nil, fmt.Errorf("decode flow %d nodes: %w", f.ID, err)
	}
	var ids []string
	for _, n := range nodes {
		if n.Type == AgentNodeType {
			ids = append(ids, n.ID)
		}
	}
	return ids, nil
}
