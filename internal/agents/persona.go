package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/models"
)

// Lens selects which parts of a snapshot a persona reads.
type Lens uint8

const (
	LensTechnicals Lens = 1 << iota
	LensFundamentals
	LensNews
	LensValuation
)

const systemTpl = `You are {persona}, an analyst on an investment committee.
{brief}

Judge the stock only from the data you are given. If the data is thin, say so
and lower your confidence.

Reply with a single JSON object and nothing else. It has three fields:
"signal" is one of bullish, bearish or neutral; "confidence" is a number from 0 to 100;
"reasoning" is two or three sentences in Chinese.`

const userTpl = `Ticker: {ticker}
Window: {start_date} to {end_date}

{data}`

var signalPrompt = prompt.FromMessages(schema.FString,
	schema.SystemMessage(systemTpl),
	schema.UserMessage(userTpl),
)

// persona is the single Agent implementation. Each constructor fixes its
// key, voice and lens.
type persona struct {
	key   string
	name  string
	brief string
	lens  Lens
	chat  model.BaseChatModel
}

func (p *persona) Key() string { return p.key }

func (p *persona) Analyze(ctx context.Context, in *Input) (*models.Signal, error) {
	if p.chat == nil {
		return nil, ErrNoChatModel
	}
	if in == nil {
		return nil, fmt.Errorf("%s: nil input", p.key)
	}

	msgs, err := signalPrompt.Format(ctx, map[string]any{
		"persona":    p.name,
		"brief":      p.brief,
		"ticker":     in.Ticker,
		"start_date": in.StartDate,
		"end_date":   in.EndDate,
		"data":       RenderSnapshot(in.Snapshot, p.lens),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: format prompt: %w", p.key, err)
	}

	resp, err := p.chat.Generate(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("%s: generate: %w", p.key, err)
	}
	sig, err := ParseSignal(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.key, err)
	}
	return sig, nil
}

var indicators = []struct {
	name   string
	period int
	fn     func([]float64, int) (float64, bool)
}{
	{"SMA20", 20, dataflows.SMA},
	{"SMA50", 50, dataflows.SMA},
	{"EMA12", 12, dataflows.EMA},
	{"RSI14", 14, dataflows.RSI},
}

var fundamentalMetrics = []string{
	"revenueGrowthTTMYoy", "epsGrowthTTMYoy", "roeTTM", "roaTTM",
	"grossMarginTTM", "netProfitMarginTTM", "currentRatioAnnual",
	"totalDebt/totalEquityAnnual", "freeCashFlowPerShareTTM",
}

var valuationMetrics = []string{
	"peTTM", "pbAnnual", "psTTM", "evEbitdaTTM", "dividendYieldIndicatedAnnual",
	"52WeekHigh", "52WeekLow", "marketCapitalization", "beta",
}

// RenderSnapshot formats the parts of a snapshot a lens asks for as plain
// text for the prompt.
func RenderSnapshot(s *dataflows.Snapshot, lens Lens) string {
	if s == nil || (s.Unavailable && len(s.News) == 0 && len(s.Metrics) == 0) {
		return "No market data is available for this ticker."
	}

	var b strings.Builder
	if s.HasPrice() {
		fmt.Fprintf(&b, "Last close: %s\n", s.Price.StringFixed(2))
	}

	if lens&LensTechnicals != 0 {
		closes := dataflows.Closes(s.Bars)
		fmt.Fprintf(&b, "\nTechnicals (%d daily bars):\n", len(closes))
		for _, ind := range indicators {
			if v, ok := ind.fn(closes, ind.period); ok {
				fmt.Fprintf(&b, "- %s: %.2f\n", ind.name, v)
			}
		}
		if r, ok := dataflows.PeriodReturn(closes); ok {
			fmt.Fprintf(&b, "- Window return: %.2f%%\n", r*100)
		}
		if v, ok := dataflows.Volatility(closes); ok {
			fmt.Fprintf(&b, "- Annualized volatility: %.2f%%\n", v*100)
		}
	}
	if lens&LensFundamentals != 0 {
		writeMetrics(&b, "Fundamentals", s.Metrics, fundamentalMetrics)
	}
	if lens&LensValuation != 0 {
		writeMetrics(&b, "Valuation", s.Metrics, valuationMetrics)
	}
	if lens&LensNews != 0 {
		b.WriteString("\nRecent headlines:\n")
		if len(s.News) == 0 {
			b.WriteString("- none\n")
		}
		news := append([]dataflows.NewsArticle(nil), s.News...)
		sort.SliceStable(news, func(i, j int) bool { return news[i].PublishedAt.After(news[j].PublishedAt) })
		for i, n := range news {
			if i == 10 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", n.Title, n.Source)
		}
	}
	return strings.TrimSpace(b.String())
}

func writeMetrics(b *strings.Builder, title string, metrics map[string]float64, keys []string) {
	fmt.Fprintf(b, "\n%s:\n", title)
	n := 0
	for _, k := range keys {
		if v, ok := metrics[k]; ok {
			fmt.Fprintf(b, "- %s: %.2f\n", k, v)
			n++
		}
	}
	if n == 0 {
		b.WriteString("- not available\n")
	}
}
