package graph

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedChat answers by persona name found in the system prompt.
type scriptedChat struct {
	answers map[string]string
}

func (c *scriptedChat) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	system := input[0].Content
	for persona, answer := range c.answers {
		if strings.Contains(system, persona) {
			if answer == "" {
				return nil, errors.New("model unavailable")
			}
			return schema.AssistantMessage(answer, nil), nil
		}
	}
	return schema.AssistantMessage(`{"signal": "neutral", "confidence": 10, "reasoning": "n/a"}`, nil), nil
}

func (c *scriptedChat) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fakeData struct {
	prices map[string]int64
}

func (f fakeData) Snapshot(_ context.Context, ticker string, start, end time.Time) (*dataflows.Snapshot, error) {
	p, ok := f.prices[ticker]
	if !ok {
		return nil, errors.New("no data")
	}
	return &dataflows.Snapshot{
		Ticker: ticker, Start: start, End: end,
		Bars:  []dataflows.Bar{{Date: end, Close: decimal.NewFromInt(p)}},
		Price: decimal.NewFromInt(p),
	}, nil
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) progress(agent, ticker, status, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, agent+"|"+ticker+"|"+status)
}

func (r *recorder) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.events {
		if got == e {
			return true
		}
	}
	return false
}

func newRequest(t *testing.T, tickers ...string) *models.HedgeFundRequest {
	req := &models.HedgeFundRequest{Tickers: tickers, StartDate: "2024-01-01", EndDate: "2024-03-01", InitialCash: 20000}
	require.NoError(t, req.Normalize(time.Now()))
	return req
}

func TestHedgeFundGraphRun(t *testing.T) {
	chat := &scriptedChat{answers: map[string]string{
		"Warren Buffett":    `{"signal": "bullish", "confidence": 80, "reasoning": "moat"}`,
		"Charlie Munger":    `{"signal": "bullish", "confidence": 60, "reasoning": "quality"}`,
		"technical analyst": "",
	}}
	newModel := func(_ context.Context, spec agents.ModelSpec) (model.BaseChatModel, error) {
		assert.Equal(t, "ollama", spec.Provider)
		return chat, nil
	}
	g := NewHedgeFundGraph(registry.Default(), fakeData{prices: map[string]int64{"AAPL": 100}}, newModel, 100000, zerolog.Nop())

	req := newRequest(t, "AAPL", "ZZZZ")
	req.ModelProvider = "ollama"
	rec := &recorder{}

	result, err := g.Run(context.Background(), req,
		[]string{consts.WarrenBuffett, consts.CharlieMunger, consts.TechnicalAnalyst}, rec.progress)
	require.NoError(t, err)

	require.Len(t, result.AnalystSignals, 3)
	buffett := result.AnalystSignals["warren_buffett_agent"]
	require.NotNil(t, buffett)
	assert.Equal(t, consts.Signal_Bullish, buffett["AAPL"].Signal)

	tech := result.AnalystSignals["technical_analyst_agent"]["AAPL"]
	assert.Equal(t, consts.Signal_Neutral, tech.Signal)
	assert.Contains(t, tech.Reasoning, "model unavailable")

	// (80 + 60 + 0) / 3 = 46.7 -> buy 10000 * 0.467 / 100
	aapl := result.Decisions["AAPL"]
	assert.Equal(t, consts.Action_Buy, aapl.Action)
	assert.Equal(t, 46.7, aapl.Confidence)
	assert.Equal(t, int64(46), aapl.Quantity)

	// no price data: still a buy signal, nothing affordable
	zzzz := result.Decisions["ZZZZ"]
	assert.Equal(t, consts.Action_Buy, zzzz.Action)
	assert.Zero(t, zzzz.Quantity)

	assert.True(t, rec.has("fetch_market_data|AAPL|Done"))
	assert.True(t, rec.has("warren_buffett|AAPL|Analyzing"))
	assert.True(t, rec.has("warren_buffett|AAPL|Done"))
	assert.True(t, rec.has("technical_analyst|AAPL|Error"))
	assert.True(t, rec.has("portfolio_manager|AAPL|Done"))
}

func TestHedgeFundGraphErrors(t *testing.T) {
	data := fakeData{prices: map[string]int64{"AAPL": 100}}
	okModel := func(context.Context, agents.ModelSpec) (model.BaseChatModel, error) { return &scriptedChat{}, nil }

	g := NewHedgeFundGraph(registry.Default(), data, okModel, 1000, zerolog.Nop())
	_, err := g.Run(context.Background(), newRequest(t, "AAPL"), nil, nil)
	assert.Error(t, err)

	_, err = g.Run(context.Background(), newRequest(t, "AAPL"), []string{"nobody"}, nil)
	assert.ErrorIs(t, err, registry.ErrUnknownAnalyst)

	bad := NewHedgeFundGraph(registry.Default(), data, func(context.Context, agents.ModelSpec) (model.BaseChatModel, error) {
		return nil, errors.New("no key")
	}, 1000, zerolog.Nop())
	_, err = bad.Run(context.Background(), newRequest(t, "AAPL"), []string{consts.WarrenBuffett}, nil)
	assert.ErrorContains(t, err, "no key")
}

func TestDecide(t *testing.T) {
	req := &models.HedgeFundRequest{Tickers: []string{"AAPL", "MSFT", "TSLA"}, Portfolio: map[string]int64{"MSFT": 12}}
	snaps := map[string]*dataflows.Snapshot{
		"AAPL": {Price: decimal.NewFromInt(50)},
		"MSFT": {Price: decimal.NewFromInt(300)},
		"TSLA": {Price: decimal.NewFromInt(200)},
	}
	signals := map[string]map[string]*models.Signal{
		"a_agent": {
			"AAPL": {Signal: consts.Signal_Bullish, Confidence: 90},
			"MSFT": {Signal: consts.Signal_Bearish, Confidence: 70},
			"TSLA": {Signal: consts.Signal_Bullish, Confidence: 30},
		},
		"b_agent": {
			"AAPL": {Signal: consts.Signal_Bullish, Confidence: 50},
			"MSFT": {Signal: consts.Signal_Bearish, Confidence: 30},
			"TSLA": {Signal: consts.Signal_Bearish, Confidence: 20},
		},
	}

	result := Decide(req, snaps, signals, 30000)

	aapl := result.Decisions["AAPL"]
	assert.Equal(t, consts.Action_Buy, aapl.Action)
	assert.Equal(t, 70.0, aapl.Confidence)
	assert.Equal(t, int64(140), aapl.Quantity) // 10000 * 0.7 / 50

	msft := result.Decisions["MSFT"]
	assert.Equal(t, consts.Action_Sell, msft.Action)
	assert.Equal(t, int64(12), msft.Quantity)

	tsla := result.Decisions["TSLA"]
	assert.Equal(t, consts.Action_Hold, tsla.Action)
	assert.Equal(t, 5.0, tsla.Confidence)
	assert.Zero(t, tsla.Quantity)

	// deterministic for the same input
	assert.Equal(t, result, Decide(req, snaps, signals, 30000))

	delete(req.Portfolio, "MSFT")
	assert.Zero(t, Decide(req, snaps, signals, 30000).Decisions["MSFT"].Quantity)
}
