package riskmgmt

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewNeutralAnalystNode weighs both extremes and argues for the middle path.
func NewNeutralAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newSpeakerNode(ctx, deps, speakerSpec{
		node:       consts.NeutralAnalyst,
		role:       consts.Agent_NeutralAnalyst,
		promptPath: "risk_mgmt/neutral_debate",
		record: func(ds *models.RiskDebateState, argument string) {
			ds.NeutralHistory += "\n" + argument
			ds.CurrentNeutralResponse = argument
		},
	})
}
