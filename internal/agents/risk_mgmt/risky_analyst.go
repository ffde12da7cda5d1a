package riskmgmt

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewRiskyAnalystNode champions the high-reward reading of the plan.
func NewRiskyAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newSpeakerNode(ctx, deps, speakerSpec{
		node:       consts.RiskyAnalyst,
		role:       consts.Agent_RiskyAnalyst,
		promptPath: "risk_mgmt/risky_debate",
		record: func(ds *models.RiskDebateState, argument string) {
			ds.RiskyHistory += "\n" + argument
			ds.CurrentRiskyResponse = argument
		},
	})
}
