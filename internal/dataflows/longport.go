package dataflows

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"
	"github.com/shopspring/decimal"
)

type LongportConfig struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

func (c LongportConfig) Complete() bool {
	return c.AppKey != "" && c.AppSecret != "" && c.AccessToken != ""
}

type LongportClient struct {
	quoteCtx *quote.QuoteContext
	now      func() time.Time
}

func NewLongportClient(cfg LongportConfig) (*LongportClient, error) {
	if !cfg.Complete() {
		return nil, errors.New("longport credentials are not configured")
	}
	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.AppKey, cfg.AppSecret, cfg.AccessToken))
	if err != nil {
		return nil, fmt.Errorf("longport config: %w", err)
	}
	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, fmt.Errorf("longport quote context: %w", err)
	}
	return &LongportClient{quoteCtx: quoteContext, now: time.Now}, nil
}

// Bars fetches the latest daily candlesticks back to start and keeps the
// ones inside [start, end].
func (lpc *LongportClient) Bars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	days := int(math.Ceil(lpc.now().Sub(start).Hours()/24)) + 1
	if days < 1 {
		days = 1
	}
	if days > 1000 {
		days = 1000
	}

	sticks, err := lpc.quoteCtx.Candlesticks(ctx, NormalizeSymbol(symbol), quote.PeriodDay, int32(days), quote.AdjustTypeNo)
	if err != nil {
		return nil, fmt.Errorf("longport candlesticks for %s: %w", symbol, err)
	}
	return filterWindow(candlesToBars(sticks), start, end), nil
}

func (lpc *LongportClient) Close() {
	if lpc.quoteCtx != nil {
		lpc.quoteCtx.Close()
	}
}

func candlesToBars(sticks []*quote.Candlestick) []Bar {
	bars := make([]Bar, 0, len(sticks))
	for _, s := range sticks {
		if s == nil {
			continue
		}
		bars = append(bars, Bar{
			Date:   time.Unix(s.Timestamp, 0).UTC(),
			Open:   decOrZero(s.Open),
			High:   decOrZero(s.High),
			Low:    decOrZero(s.Low),
			Close:  decOrZero(s.Close),
			Volume: s.Volume,
		})
	}
	return bars
}

func decOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func filterWindow(bars []Bar, start, end time.Time) []Bar {
	from := start.Truncate(24 * time.Hour)
	until := end.Truncate(24 * time.Hour).Add(24 * time.Hour)
	out := bars[:0]
	for _, b := range bars {
		if !b.Date.Before(from) && b.Date.Before(until) {
			out = append(out, b)
		}
	}
	return out
}
