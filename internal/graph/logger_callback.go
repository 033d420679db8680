package graph

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
)

type startKey struct{}

// LoggerCallback logs node lifecycle at debug level and node errors at warn.
type LoggerCallback struct {
	logger zerolog.Logger
}

func NewLoggerCallback(logger zerolog.Logger) *LoggerCallback {
	return &LoggerCallback{logger: logger}
}

func (cb *LoggerCallback) event(lvl zerolog.Level, info *callbacks.RunInfo) *zerolog.Event {
	e := cb.logger.WithLevel(lvl)
	if info != nil {
		e = e.Str("node", info.Name).Str("component", string(info.Component)).Str("type", info.Type)
	}
	return e
}

func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	cb.event(zerolog.DebugLevel, info).Msg("node start")
	return context.WithValue(ctx, startKey{}, time.Now())
}

func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	e := cb.event(zerolog.DebugLevel, info)
	if started, ok := ctx.Value(startKey{}).(time.Time); ok {
		e = e.Dur("elapsed", time.Since(started))
	}
	e.Msg("node end")
	return ctx
}

func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	cb.event(zerolog.WarnLevel, info).Err(err).Msg("node error")
	return ctx
}

func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return cb.OnStart(ctx, info, nil)
}

func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return cb.OnEnd(ctx, info, nil)
}

var _ callbacks.Handler = (*LoggerCallback)(nil)
