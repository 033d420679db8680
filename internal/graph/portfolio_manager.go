package graph

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/cloudwego/eino/compose"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/models"
	"github.com/shopspring/decimal"
)

// ActionThreshold is the minimum absolute score for a buy or sell.
const ActionThreshold = 20.0

func portfolioManager(progress ProgressFunc) func(context.Context, map[string]any) (*models.HedgeFundResult, error) {
	return func(ctx context.Context, in map[string]any) (*models.HedgeFundResult, error) {
		signals := make(map[string]map[string]*models.Signal, len(in))
		for node, v := range in {
			s, ok := v.(map[string]*models.Signal)
			if !ok {
				return nil, fmt.Errorf("portfolio manager: node %s sent %T", node, v)
			}
			signals[node] = s
		}

		var result *models.HedgeFundResult
		err := compose.ProcessState[*runState](ctx, func(_ context.Context, st *runState) error {
			result = Decide(st.req, st.snapshots, signals, st.cash)
			return nil
		})
		if err != nil {
			return nil, err
		}
		for _, ticker := range sortedTickers(result) {
			d := result.Decisions[ticker]
			progress(consts.PortfolioManager, ticker, consts.Progress_Done, d.Action)
		}
		return result, nil
	}
}

func sortedTickers(r *models.HedgeFundResult) []string {
	tickers := make([]string, 0, len(r.Decisions))
	for t := range r.Decisions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Decide turns analyst signals into one decision per ticker. The score is
// the mean of +confidence for bullish, -confidence for bearish and 0 for
// neutral over every analyst that reported on the ticker.
func Decide(req *models.HedgeFundRequest, snaps map[string]*dataflows.Snapshot, signals map[string]map[string]*models.Signal, cash float64) *models.HedgeFundResult {
	result := &models.HedgeFundResult{
		Decisions:      make(map[string]*models.Decision, len(req.Tickers)),
		AnalystSignals: signals,
	}
	perTicker := 0.0
	if len(req.Tickers) > 0 {
		perTicker = cash / float64(len(req.Tickers))
	}

	nodes := make([]string, 0, len(signals))
	for n := range signals {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	for _, ticker := range req.Tickers {
		var sum float64
		var n, bull, bear, neutral int
		for _, node := range nodes {
			sig, ok := signals[node][ticker]
			if !ok || sig == nil {
				continue
			}
			n++
			switch sig.Signal {
			case consts.Signal_Bullish:
				bull++
				sum += sig.Confidence
			case consts.Signal_Bearish:
				bear++
				sum -= sig.Confidence
			default:
				neutral++
			}
		}

		score := 0.0
		if n > 0 {
			score = sum / float64(n)
		}
		d := &models.Decision{
			Action:     consts.Action_Hold,
			Confidence: math.Round(math.Abs(score)*10) / 10,
			Reasoning:  fmt.Sprintf("%d 位分析师: 看多 %d, 看空 %d, 中性 %d, 综合得分 %.1f", n, bull, bear, neutral, score),
		}

		switch {
		case score >= ActionThreshold:
			d.Action = consts.Action_Buy
			snap := snaps[ticker]
			if snap.HasPrice() {
				budget := decimal.NewFromFloat(perTicker).Mul(decimal.NewFromFloat(d.Confidence / 100))
				d.Quantity = budget.Div(snap.Price).Floor().IntPart()
			} else {
				d.Reasoning += "; 无价格数据"
			}
		case score <= -ActionThreshold:
			d.Action = consts.Action_Sell
			d.Quantity = req.Portfolio[ticker]
			if d.Quantity <= 0 {
				d.Quantity = 0
				d.Reasoning += "; 无持仓"
			}
		}
		result.Decisions[ticker] = d
	}
	return result
}
