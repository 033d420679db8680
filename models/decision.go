package models

// Signal is one analyst's opinion on one ticker.
type Signal struct {
	Signal     string  `json:"signal"`     // bullish, bearish, neutral
	Confidence float64 `json:"confidence"` // 0 to 100
	Reasoning  string  `json:"reasoning"`
}

// Decision is the portfolio manager's action for one ticker.
type Decision struct {
	Action     string  `json:"action"` // buy, sell, hold
	Quantity   int64   `json:"quantity"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

type HedgeFundResult struct {
	Decisions map[string]*Decision `json:"decisions"`
	// node name -> ticker -> signal
	AnalystSignals map[string]map[string]*Signal `json:"analyst_signals"`
}
