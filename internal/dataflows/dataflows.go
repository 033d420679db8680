package dataflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dyike/CortexHedge/config"
	"github.com/rs/zerolog"
)

// Interface combines a price source with optional research sources into
// one Provider. Research failures are logged and leave the snapshot partial.
type Interface struct {
	prices   PriceSource
	research []ResearchSource
	logger   zerolog.Logger
	closers  []func()
}

func NewInterface(prices PriceSource, logger zerolog.Logger, research ...ResearchSource) *Interface {
	return &Interface{prices: prices, research: research, logger: logger}
}

// NewFromConfig wires the configured price source plus Finnhub when a key is
// present, falling back to the news scraper otherwise.
func NewFromConfig(cfg *config.Config, logger zerolog.Logger) (*Interface, error) {
	var (
		prices  PriceSource
		closers []func()
	)
	switch cfg.DataProvider {
	case config.DataProviderLongport:
		lp, err := NewLongportClient(LongportConfig{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
		if err != nil {
			return nil, err
		}
		prices = lp
		closers = append(closers, lp.Close)
	case config.DataProviderYahoo, "":
		prices = NewYahooFinanceClient(cfg.DataCacheDir, cfg.CacheEnabled)
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataProvider)
	}

	var research ResearchSource
	if cfg.FinnhubAPIKey != "" {
		research = NewFinnhubClient(cfg.FinnhubAPIKey, "", cfg.DataCacheDir, cfg.CacheEnabled)
	} else {
		research = NewNewsScraperClient("", cfg.DataCacheDir, cfg.CacheEnabled)
	}

	i := NewInterface(prices, logger.With().Str("component", "dataflows").Logger(), research)
	i.closers = closers
	return i, nil
}

// Snapshot implements Provider.
func (i *Interface) Snapshot(ctx context.Context, ticker string, start, end time.Time) (*Snapshot, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = NormalizeSymbol(ticker)
	snap := &Snapshot{Ticker: ticker, Start: start, End: end}

	bars, err := i.prices.Bars(ctx, ticker, start, end)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		i.logger.Warn().Err(err).Str("ticker", ticker).Msg("price data unavailable")
	}
	snap.Bars = bars
	if len(bars) == 0 {
		snap.Unavailable = true
	} else {
		snap.Price = bars[len(bars)-1].Close
	}

	for _, src := range i.research {
		news, err := src.CompanyNews(ctx, ticker, start, end)
		switch {
		case errors.Is(err, ErrNoAPIKey):
		case err != nil:
			i.logger.Warn().Err(err).Str("ticker", ticker).Msg("news unavailable")
		default:
			snap.News = append(snap.News, news...)
		}

		metrics, err := src.BasicFinancials(ctx, ticker)
		switch {
		case errors.Is(err, ErrNoAPIKey):
		case err != nil:
			i.logger.Warn().Err(err).Str("ticker", ticker).Msg("metrics unavailable")
		case len(metrics) > 0:
			if snap.Metrics == nil {
				snap.Metrics = make(map[string]float64, len(metrics))
			}
			for k, v := range metrics {
				snap.Metrics[k] = v
			}
		}
	}
	return snap, nil
}

func (i *Interface) Close() {
	for _, c := range i.closers {
		c()
	}
}
