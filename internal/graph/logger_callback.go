package graph

import (
	"context"
	"errors"
	"io"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

// LoggerCallback traces graph execution in debug runs: node boundaries,
// model output sizes and errors, each tagged with the active pipeline node.
type LoggerCallback struct {
	callbacks.HandlerBuilder

	logger zerolog.Logger
}

func NewLoggerCallback() *LoggerCallback {
	return &LoggerCallback{logger: logging.NewLogger("trace")}
}

func (cb *LoggerCallback) activeNode(ctx context.Context) string {
	node := ""
	_ = compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
		node = state.Goto
		return nil
	})
	return node
}

func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil {
		return ctx
	}
	cb.logger.Debug().
		Str("node", cb.activeNode(ctx)).
		Str("name", info.Name).
		Str("component", string(info.Component)).
		Msg("start")
	return ctx
}

func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil {
		return ctx
	}
	ev := cb.logger.Debug().
		Str("node", cb.activeNode(ctx)).
		Str("name", info.Name)
	if msg, ok := output.(*schema.Message); ok && msg != nil {
		ev = ev.Int("content_len", len(msg.Content)).Int("tool_calls", len(msg.ToolCalls))
	}
	ev.Msg("end")
	return ctx
}

func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	cb.logger.Error().Err(err).
		Str("node", cb.activeNode(ctx)).
		Str("name", name).
		Msg("node failed")
	return ctx
}

func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	name := ""
	if info != nil {
		name = info.Name
	}
	node := cb.activeNode(ctx)
	go func() {
		defer output.Close()
		frames := 0
		for {
			_, err := output.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				cb.logger.Warn().Err(err).Str("name", name).Msg("stream recv failed")
				return
			}
			frames++
		}
		cb.logger.Debug().Str("node", node).Str("name", name).Int("frames", frames).Msg("stream end")
	}()
	return ctx
}

func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}
