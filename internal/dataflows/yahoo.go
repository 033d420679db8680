package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct {
	cache *CacheManager
	retry RetryConfig
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient(cacheDir string, cacheEnabled bool) *YahooFinanceClient {
	cache := NewCacheManager(filepath.Join(cacheDir, "yahoo_finance"), 24*time.Hour, cacheEnabled)
	return &YahooFinanceClient{
		cache: cache,
		retry: DefaultRetryConfig(),
	}
}

// Bars gets daily candles for a symbol
func (yf *YahooFinanceClient) Bars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"start":  start.Format(time.DateOnly),
		"end":    end.Format(time.DateOnly),
	}
	var cached []Bar
	if yf.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	// finance-go treats End as exclusive
	until := end.AddDate(0, 0, 1)

	var result []Bar
	err := WithRetry(ctx, yf.retry, func() error {
		iter := chart.Get(&chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&until),
			Interval: datetime.OneDay,
		})

		result = result[:0]
		for iter.Next() {
			b := iter.Bar()
			result = append(result, Bar{
				Date:   time.Unix(int64(b.Timestamp), 0).UTC(),
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: int64(b.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = yf.cache.Set("yahoo", "historical", cacheKey, result)
	return result, nil
}

// LastPrice returns the regular market price.
func (yf *YahooFinanceClient) LastPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = NormalizeSymbol(symbol)

	var price decimal.Decimal
	err := WithRetry(ctx, yf.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}
		if q == nil {
			return Permanent(fmt.Errorf("no quote for %s", symbol))
		}
		price = decimal.NewFromFloat(q.RegularMarketPrice)
		return nil
	})
	return price, err
}
