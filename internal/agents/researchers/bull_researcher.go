package researchers

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewBullResearcherNode argues the case for investing.
func NewBullResearcherNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newDebateNode(ctx, deps, debateSpec{
		node:       consts.BullResearcher,
		role:       consts.Agent_BullResearcher,
		promptPath: "researchers/bull_researcher",
		label:      "Bull Analyst: ",
		bank:       func(deps *agents.Deps) memory.Store { return deps.Banks.Bull },
		record: func(ds *models.InvestDebateState, argument string) {
			ds.BullHistory += "\n" + argument
		},
	})
}
