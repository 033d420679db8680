package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dyike/CortexHedge/config"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/internal/logging"
)

// Prints the market snapshot the analysts would see for each ticker over the
// last 30 days: go run ./cmd/dataflow AAPL 700.HK
func main() {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	logger := logging.New(cfg)

	symbols := os.Args[1:]
	if len(symbols) == 0 {
		symbols = []string{"AAPL"}
	}

	data, err := dataflows.NewFromConfig(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init market data")
	}
	defer data.Close()

	end := time.Now()
	start := end.AddDate(0, 0, -30)
	for _, symbol := range symbols {
		snap, err := data.Snapshot(ctx, symbol, start, end)
		if err != nil {
			logger.Error().Err(err).Str("symbol", symbol).Msg("snapshot")
			continue
		}
		payload, _ := json.MarshalIndent(snap, "", "  ")
		fmt.Println(string(payload))
	}
}
