package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/dyike/CortexHedge/consts"
	"github.com/dyike/CortexHedge/internal/dataflows"
	"github.com/dyike/CortexHedge/models"
)

// Input is what an analyst sees for one ticker.
type Input struct {
	Ticker    string
	StartDate string
	EndDate   string
	Snapshot  *dataflows.Snapshot
}

// Agent produces a signal for one ticker.
type Agent interface {
	Key() string
	Analyze(ctx context.Context, in *Input) (*models.Signal, error)
}

// Factory binds an agent to a chat model. A nil model yields an agent that
// still reports its key but fails on Analyze.
type Factory func(chat model.BaseChatModel) Agent

var ErrNoChatModel = errors.New("no chat model configured")

// ParseSignal reads the first JSON object in an LLM answer. Markdown fences
// and surrounding prose are ignored.
func ParseSignal(content string) (*models.Signal, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in answer: %q", truncate(content, 120))
	}

	var raw struct {
		Signal     string          `json:"signal"`
		Confidence json.Number     `json:"confidence"`
		Reasoning  json.RawMessage `json:"reasoning"`
	}
	dec := json.NewDecoder(strings.NewReader(content[start : end+1]))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode signal: %w", err)
	}

	sig := &models.Signal{Signal: strings.ToLower(strings.TrimSpace(raw.Signal))}
	switch sig.Signal {
	case consts.Signal_Bullish, consts.Signal_Bearish, consts.Signal_Neutral:
	default:
		return nil, fmt.Errorf("unknown signal %q", raw.Signal)
	}

	if raw.Confidence != "" {
		c, err := raw.Confidence.Float64()
		if err != nil {
			return nil, fmt.Errorf("decode confidence: %w", err)
		}
		sig.Confidence = clamp(c, 0, 100)
	}
	sig.Reasoning = reasoningText(raw.Reasoning)
	return sig, nil
}

// reasoningText accepts either a string or any JSON value, which some models
// return as a nested object.
func reasoningText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
