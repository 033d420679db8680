package dataflows

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const googleNewsBaseURL = "https://news.google.com"

// NewsScraperClient reads headlines from the Google News search page.
type NewsScraperClient struct {
	client     *resty.Client
	cache      *CacheManager
	retry      RetryConfig
	baseURL    string
	maxResults int
}

// NewNewsScraperClient creates a new news scraper client
func NewNewsScraperClient(baseURL, cacheDir string, cacheEnabled bool) *NewsScraperClient {
	if baseURL == "" {
		baseURL = googleNewsBaseURL
	}
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; CortexHedge/1.0)")

	return &NewsScraperClient{
		client:     client,
		cache:      NewCacheManager(filepath.Join(cacheDir, "news_scraper"), 2*time.Hour, cacheEnabled),
		retry:      DefaultRetryConfig(),
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxResults: 20,
	}
}

// CompanyNews searches for "<symbol> stock" between from and to.
func (ns *NewsScraperClient) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]NewsArticle, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	searchURL := ns.searchURL(symbol+" stock", from, to)
	var cached []NewsArticle
	if ns.cache.Get("google_news", "search", searchURL, &cached) {
		return cached, nil
	}

	var result []NewsArticle
	err := WithRetry(ctx, ns.retry, func() error {
		resp, err := ns.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(searchURL)
		if err != nil {
			return fmt.Errorf("fetch Google News: %w", err)
		}
		body := resp.RawBody()
		defer body.Close()

		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("HTTP error %d when fetching Google News", resp.StatusCode())
		}

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return Permanent(fmt.Errorf("parse HTML: %w", err))
		}
		result = ns.parse(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result) > ns.maxResults {
		result = result[:ns.maxResults]
	}
	_ = ns.cache.Set("google_news", "search", searchURL, result)
	return result, nil
}

// BasicFinancials is not served by a news page.
func (ns *NewsScraperClient) BasicFinancials(context.Context, string) (map[string]float64, error) {
	return nil, nil
}

func (ns *NewsScraperClient) searchURL(query string, from, to time.Time) string {
	if !from.IsZero() && !to.IsZero() {
		query += fmt.Sprintf(" after:%s before:%s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return fmt.Sprintf("%s/search?q=%s&hl=en&gl=US&ceid=US:en", ns.baseURL, url.QueryEscape(query))
}

func (ns *NewsScraperClient) parse(doc *goquery.Document) []NewsArticle {
	var articles []NewsArticle
	doc.Find("article").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(s.Find("h4").First().Text())
		}
		if title == "" {
			return
		}

		href, ok := s.Find("a[href]").First().Attr("href")
		if !ok {
			return
		}

		source := strings.TrimSpace(s.Find("div[data-n-tid]").First().Text())
		if source == "" {
			source = "Google News"
		}

		var published time.Time
		if dt, ok := s.Find("time").First().Attr("datetime"); ok {
			published, _ = time.Parse(time.RFC3339, dt)
		}

		articles = append(articles, NewsArticle{
			Title:       title,
			URL:         ns.cleanURL(href),
			Source:      source,
			PublishedAt: published,
		})
	})
	return articles
}

// cleanURL removes the Google News redirect wrapper
func (ns *NewsScraperClient) cleanURL(href string) string {
	if _, after, ok := strings.Cut(href, "url="); ok {
		if decoded, err := url.QueryUnescape(after); err == nil {
			return decoded
		}
	}
	if strings.HasPrefix(href, "./") {
		return ns.baseURL + href[1:]
	}
	if strings.HasPrefix(href, "/") {
		return ns.baseURL + href
	}
	return href
}
