package dataflows

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one daily OHLCV candle.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// NewsArticle represents a news article
type NewsArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// Snapshot is everything the analysts see for one ticker. Metrics holds
// fundamental ratios keyed by provider metric name. Unavailable is set when
// no source returned candles.
type Snapshot struct {
	Ticker      string             `json:"ticker"`
	Start       time.Time          `json:"start"`
	End         time.Time          `json:"end"`
	Bars        []Bar              `json:"bars"`
	Price       decimal.Decimal    `json:"price"`
	News        []NewsArticle      `json:"news,omitempty"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Unavailable bool               `json:"unavailable,omitempty"`
}

// HasPrice reports whether the snapshot carries a usable last price.
func (s *Snapshot) HasPrice() bool {
	return s != nil && s.Price.IsPositive()
}

// Provider returns market data for a ticker in [start, end].
type Provider interface {
	Snapshot(ctx context.Context, ticker string, start, end time.Time) (*Snapshot, error)
}

// PriceSource returns daily candles.
type PriceSource interface {
	Bars(ctx context.Context, ticker string, start, end time.Time) ([]Bar, error)
}

// ResearchSource returns news and fundamental metrics.
type ResearchSource interface {
	CompanyNews(ctx context.Context, ticker string, start, end time.Time) ([]NewsArticle, error)
	BasicFinancials(ctx context.Context, ticker string) (map[string]float64, error)
}
