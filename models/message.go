package models

import "time"

// Event is one item of a run stream: start, progress, complete or error.
type Event struct {
	Type      string           `json:"type"`
	RunID     string           `json:"run_id,omitempty"`
	Agent     string           `json:"agent,omitempty"`
	Ticker    string           `json:"ticker,omitempty"`
	Status    string           `json:"status,omitempty"`
	Message   string           `json:"message,omitempty"`
	Data      *HedgeFundResult `json:"data,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
