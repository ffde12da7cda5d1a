package riskmgmt

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewSafeAnalystNode argues for capital preservation.
func NewSafeAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newSpeakerNode(ctx, deps, speakerSpec{
		node:       consts.SafeAnalyst,
		role:       consts.Agent_SafeAnalyst,
		promptPath: "risk_mgmt/safe_debate",
		record: func(ds *models.RiskDebateState, argument string) {
			ds.SafeHistory += "\n" + argument
			ds.CurrentSafeResponse = argument
		},
	})
}
