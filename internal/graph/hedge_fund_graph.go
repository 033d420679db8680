package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/agents"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/internal/registry"
	"github.com/dyike/CortexHedge/models"
	"github.com/rs/zerolog"
)

// ProgressFunc receives a status update for one agent and ticker. Ticker is
// empty for run-wide steps.
type ProgressFunc func(agent, ticker, status, message string)

// ModelFactory returns the chat model a run uses.
type ModelFactory func(ctx context.Context, spec agents.ModelSpec) (model.BaseChatModel, error)

// runState is the per-invocation local state shared by all nodes.
type runState struct {
	req       *models.HedgeFundRequest
	start     time.Time
	end       time.Time
	cash      float64
	snapshots map[string]*dataflows.Snapshot
}

type HedgeFundGraph struct {
	registry    *registry.Registry
	data        dataflows.Provider
	newModel    ModelFactory
	defaultCash float64
	logger      zerolog.Logger
}

func NewHedgeFundGraph(reg *registry.Registry, data dataflows.Provider, newModel ModelFactory, defaultCash float64, logger zerolog.Logger) *HedgeFundGraph {
	return &HedgeFundGraph{
		registry:    reg,
		data:        data,
		newModel:    newModel,
		defaultCash: defaultCash,
		logger:      logger.With().Str("component", "graph").Logger(),
	}
}

// Run executes START -> fetch_market_data -> analysts in parallel ->
// portfolio_manager -> END. req must be normalized and analysts resolved.
func (g *HedgeFundGraph) Run(ctx context.Context, req *models.HedgeFundRequest, analysts []string, progress ProgressFunc) (*models.HedgeFundResult, error) {
	if len(analysts) == 0 {
		return nil, errors.New("no analysts selected")
	}
	if progress == nil {
		progress = func(string, string, string, string) {}
	}

	chat, err := g.newModel(ctx, agents.ModelSpec{Provider: req.ModelProvider, Name: req.ModelName})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	runnable, err := g.compile(ctx, req, analysts, chat, progress)
	if err != nil {
		return nil, err
	}

	result, err := runnable.Invoke(ctx, req, compose.WithCallbacks(NewLoggerCallback(g.logger)))
	if err != nil {
		return nil, fmt.Errorf("hedge fund graph: %w", err)
	}
	return result, nil
}

func (g *HedgeFundGraph) compile(ctx context.Context, req *models.HedgeFundRequest, analysts []string, chat model.BaseChatModel, progress ProgressFunc) (compose.Runnable[*models.HedgeFundRequest, *models.HedgeFundResult], error) {
	start, end := req.Window()
	cash := req.InitialCash
	if cash <= 0 {
		cash = g.defaultCash
	}

	gr := compose.NewGraph[*models.HedgeFundRequest, *models.HedgeFundResult](
		compose.WithGenLocalState(func(context.Context) *runState {
			return &runState{
				req:       req,
				start:     start,
				end:       end,
				cash:      cash,
				snapshots: make(map[string]*dataflows.Snapshot, len(req.Tickers)),
			}
		}),
	)

	_ = gr.AddLambdaNode(consts.FetchMarketData,
		compose.InvokableLambda(g.fetchMarketData(progress)),
		compose.WithNodeName(consts.FetchMarketData))
	_ = gr.AddLambdaNode(consts.PortfolioManager,
		compose.InvokableLambda(portfolioManager(progress)),
		compose.WithNodeName(consts.PortfolioManager))

	if err := gr.AddEdge(compose.START, consts.FetchMarketData); err != nil {
		return nil, err
	}

	nodes := g.registry.AnalystNodes()
	for _, key := range analysts {
		node, ok := nodes[key]
		if !ok {
			return nil, fmt.Errorf("%w: %s", registry.ErrUnknownAnalyst, key)
		}
		agent := node.New(chat)
		if err := gr.AddLambdaNode(node.NodeName,
			compose.InvokableLambda(analystNode(agent, req, progress)),
			compose.WithNodeName(node.NodeName),
			compose.WithOutputKey(node.NodeName),
		); err != nil {
			return nil, fmt.Errorf("add %s: %w", node.NodeName, err)
		}
		if err := gr.AddEdge(consts.FetchMarketData, node.NodeName); err != nil {
			return nil, err
		}
		if err := gr.AddEdge(node.NodeName, consts.PortfolioManager); err != nil {
			return nil, err
		}
	}
	if err := gr.AddEdge(consts.PortfolioManager, compose.END); err != nil {
		return nil, err
	}

	return gr.Compile(ctx,
		compose.WithGraphName("hedge_fund"),
		compose.WithNodeTriggerMode(compose.AllPredecessor),
	)
}

func (g *HedgeFundGraph) fetchMarketData(progress ProgressFunc) func(context.Context, *models.HedgeFundRequest) (map[string]*dataflows.Snapshot, error) {
	return func(ctx context.Context, req *models.HedgeFundRequest) (map[string]*dataflows.Snapshot, error) {
		var start, end time.Time
		_ = compose.ProcessState[*runState](ctx, func(_ context.Context, s *runState) error {
			start, end = s.start, s.end
			return nil
		})

		snaps := make(map[string]*dataflows.Snapshot, len(req.Tickers))
		for _, ticker := range req.Tickers {
			progress(consts.FetchMarketData, ticker, consts.Progress_Analyzing, "获取市场数据")
			snap, err := g.data.Snapshot(ctx, ticker, start, end)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				g.logger.Warn().Err(err).Str("ticker", ticker).Msg("market data failed")
				snap = &dataflows.Snapshot{Ticker: ticker, Start: start, End: end, Unavailable: true}
			}
			snaps[ticker] = snap
			progress(consts.FetchMarketData, ticker, consts.Progress_Done, "")
		}

		err := compose.ProcessState[*runState](ctx, func(_ context.Context, s *runState) error {
			for k, v := range snaps {
				s.snapshots[k] = v
			}
			return nil
		})
		return snaps, err
	}
}

// analystNode runs one agent over every ticker. A failure on a ticker is
// recorded as a neutral signal so the remaining analysts still count.
func analystNode(agent agents.Agent, req *models.HedgeFundRequest, progress ProgressFunc) func(context.Context, map[string]*dataflows.Snapshot) (map[string]*models.Signal, error) {
	return func(ctx context.Context, snaps map[string]*dataflows.Snapshot) (map[string]*models.Signal, error) {
		signals := make(map[string]*models.Signal, len(req.Tickers))
		for _, ticker := range req.Tickers {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			progress(agent.Key(), ticker, consts.Progress_Analyzing, "")
			sig, err := agent.Analyze(ctx, &agents.Input{
				Ticker:    ticker,
				StartDate: req.StartDate,
				EndDate:   req.EndDate,
				Snapshot:  snaps[ticker],
			})
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				signals[ticker] = &models.Signal{Signal: consts.Signal_Neutral, Reasoning: err.Error()}
				progress(agent.Key(), ticker, consts.Progress_Error, err.Error())
				continue
			}
			signals[ticker] = sig
			progress(agent.Key(), ticker, consts.Progress_Done, sig.Signal)
		}
		return signals, nil
	}
}
