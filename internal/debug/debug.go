// Package debug exposes the eino visual debug server for inspecting graph
// runs in a browser.
package debug

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/devops"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/logging"
)

// GraphDebugger starts the devops server when enabled in config. Disabled
// debuggers are no-ops, so callers never need to branch.
type GraphDebugger struct {
	cfg *config.Config
}

func NewGraphDebugger(cfg *config.Config) *GraphDebugger {
	return &GraphDebugger{cfg: cfg}
}

// Start initializes the debug server. Safe to call when disabled.
func (d *GraphDebugger) Start(ctx context.Context) error {
	if !d.cfg.EinoDebugEnabled {
		return nil
	}
	if err := devops.Init(ctx); err != nil {
		return fmt.Errorf("init graph debug server: %w", err)
	}
	logger := logging.NewLogger("debug")
	logger.Info().
		Int("port", d.cfg.EinoDebugPort).
		Msg("graph debug server started")
	return nil
}

// URL returns the local debug endpoint, or empty when disabled.
func (d *GraphDebugger) URL() string {
	if !d.cfg.EinoDebugEnabled {
		return ""
	}
	return fmt.Sprintf("http://localhost:%d", d.cfg.EinoDebugPort)
}
