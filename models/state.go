package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// HedgeFundRequest is the body of a run. Analysts come from SelectedAgents,
// Swarm or FlowID; the caller resolves them against the registry.
type HedgeFundRequest struct {
	Tickers        []string         `json:"tickers"`
	SelectedAgents []string         `json:"selected_agents,omitempty"`
	Swarm          string           `json:"swarm,omitempty"`
	FlowID         int64            `json:"flow_id,omitempty"`
	StartDate      string           `json:"start_date,omitempty"`
	EndDate        string           `json:"end_date,omitempty"`
	ModelProvider  string           `json:"model_provider,omitempty"`
	ModelName      string           `json:"model_name,omitempty"`
	InitialCash    float64          `json:"initial_cash,omitempty"`
	Portfolio      map[string]int64 `json:"portfolio,omitempty"`
}

// Normalize upper-cases and dedupes tickers and fills the default date window
// (three months ending at now). It does not touch analyst selection.
func (r *HedgeFundRequest) Normalize(now time.Time) error {
	seen := make(map[string]bool, len(r.Tickers))
	tickers := make([]string, 0, len(r.Tickers))
	for _, t := range r.Tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	if len(tickers) == 0 {
		return errors.New("at least one ticker is required")
	}
	r.Tickers = tickers

	if strings.TrimSpace(r.EndDate) == "" {
		r.EndDate = now.Format(DateLayout)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date: %w", err)
	}
	if strings.TrimSpace(r.StartDate) == "" {
		r.StartDate = end.AddDate(0, -3, 0).Format(DateLayout)
	}
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date: %w", err)
	}
	if start.After(end) {
		return fmt.Errorf("start_date %s is after end_date %s", r.StartDate, r.EndDate)
	}
	if r.InitialCash < 0 {
		return errors.New("initial_cash must not be negative")
	}
	return nil
}

// Window returns the parsed date range. Call after Normalize.
func (r *HedgeFundRequest) Window() (time.Time, time.Time) {
	start, _ := time.Parse(DateLayout, r.StartDate)
	end, _ := time.Parse(DateLayout, r.EndDate)
	return start, end
}
