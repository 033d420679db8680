package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

var ErrNoAPIKey = errors.New("finnhub API key not configured")

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	retry  RetryConfig
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client. An empty baseURL selects
// the public endpoint.
func NewFinnhubClient(apiKey, baseURL, cacheDir string, cacheEnabled bool) *FinnhubClient {
	if baseURL == "" {
		baseURL = finnhubBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  NewCacheManager(filepath.Join(cacheDir, "finnhub"), 6*time.Hour, cacheEnabled),
		retry:  DefaultRetryConfig(),
		apiKey: apiKey,
	}
}

// FinnhubNews represents news from Finnhub API
type FinnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

type finnhubMetricResponse struct {
	Symbol string         `json:"symbol"`
	Metric map[string]any `json:"metric"`
}

// CompanyNews gets news articles for a specific company
func (fc *FinnhubClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsArticle, error) {
	if fc.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]string{
		"symbol": symbol,
		"from":   from.Format(time.DateOnly),
		"to":     to.Format(time.DateOnly),
	}
	var cached []NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var raw []FinnhubNews
	err := fc.get(ctx, "/company-news", map[string]string{
		"symbol": symbol,
		"from":   from.Format(time.DateOnly),
		"to":     to.Format(time.DateOnly),
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch news for %s: %w", symbol, err)
	}

	result := make([]NewsArticle, 0, len(raw))
	for _, n := range raw {
		result = append(result, NewsArticle{
			Title:       n.Headline,
			Summary:     n.Summary,
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: time.Unix(n.DateTime, 0).UTC(),
		})
	}
	_ = fc.cache.Set("finnhub", "company_news", cacheKey, result)
	return result, nil
}

// BasicFinancials returns the numeric entries of the metric=all endpoint.
func (fc *FinnhubClient) BasicFinancials(ctx context.Context, symbol string) (map[string]float64, error) {
	if fc.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	symbol = NormalizeSymbol(symbol)

	var cached map[string]float64
	if fc.cache.Get("finnhub", "basic_financials", symbol, &cached) {
		return cached, nil
	}

	var raw finnhubMetricResponse
	err := fc.get(ctx, "/stock/metric", map[string]string{
		"symbol": symbol,
		"metric": "all",
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("fetch metrics for %s: %w", symbol, err)
	}

	metrics := make(map[string]float64, len(raw.Metric))
	for k, v := range raw.Metric {
		if f, ok := v.(float64); ok {
			metrics[k] = f
		}
	}
	_ = fc.cache.Set("finnhub", "basic_financials", symbol, metrics)
	return metrics, nil
}

func (fc *FinnhubClient) get(ctx context.Context, path string, params map[string]string, out any) error {
	return WithRetry(ctx, fc.retry, func() error {
		resp, err := fc.client.R().
			SetContext(ctx).
			SetQueryParams(params).
			SetQueryParam("token", fc.apiKey).
			Get(path)
		if err != nil {
			return err
		}
		switch code := resp.StatusCode(); {
		case code == http.StatusTooManyRequests || code >= 500:
			return fmt.Errorf("API error %d", code)
		case code != http.StatusOK:
			return Permanent(fmt.Errorf("API error %d: %s", code, resp.String()))
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return Permanent(fmt.Errorf("parse response: %w", err))
		}
		return nil
	})
}
