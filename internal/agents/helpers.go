package agents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/logging"
)

var logger = logging.NewLogger("agents")

// ChatFunc is a single model invocation: either a raw chat model's Generate
// or a react agent's Generate.
type ChatFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)

// CallWithRetry invokes call with the shared retry policy: bounded
// attempts, linearly growing delay (attempt n sleeps RetryBaseDelay * n).
func CallWithRetry(ctx context.Context, call ChatFunc, input []*schema.Message, cfg *config.Config) (*schema.Message, error) {
	attempts := cfg.RetryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := call(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err
		logger.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).
			Msg("model call failed")

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryBaseDelay * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("model call failed after %d attempts: %w", attempts, lastErr)
}

// SoftGenerate is CallWithRetry with the node-local soft-fail policy: when
// retries are exhausted the error is rendered as the node's output text, so
// one failing report never aborts the whole run.
func SoftGenerate(ctx context.Context, call ChatFunc, input []*schema.Message, cfg *config.Config, role string) *schema.Message {
	out, err := CallWithRetry(ctx, call, input, cfg)
	if err != nil {
		logger.Error().Err(err).Str("role", role).Msg("degrading to inline error report")
		return schema.AssistantMessage(
			fmt.Sprintf("Error: the %s could not produce a report: %v", role, err), nil)
	}
	return out
}

// ToolCallChecker reports whether a streamed response carries tool calls,
// so the react agent knows to dispatch to its tools node.
func ToolCallChecker(ctx context.Context, sr *schema.StreamReader[*schema.Message]) (bool, error) {
	defer sr.Close()
	for {
		msg, err := sr.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if len(msg.ToolCalls) > 0 {
			return true, nil
		}
	}
}
