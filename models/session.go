package models

import "time"

type RunRecord struct {
	ID        string           `json:"id"`
	Request   HedgeFundRequest `json:"request"`
	Status    string           `json:"status"`
	Result    *HedgeFundResult `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type RunEventRecord struct {
	RunID     string    `json:"run_id"`
	Seq       int       `json:"seq"`
	Event     Event     `json:"event"`
	CreatedAt time.Time `json:"created_at"`
}

type RunWithEvents struct {
	RunRecord
	Events []RunEventRecord `json:"events"`
}
