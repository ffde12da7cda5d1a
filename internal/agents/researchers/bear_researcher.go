package researchers

import (
	"context"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewBearResearcherNode argues the case against investing.
func NewBearResearcherNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newDebateNode(ctx, deps, debateSpec{
		node:       consts.BearResearcher,
		role:       consts.Agent_BearResearcher,
		promptPath: "researchers/bear_researcher",
		label:      "Bear Analyst: ",
		bank:       func(deps *agents.Deps) memory.Store { return deps.Banks.Bear },
		record: func(ds *models.InvestDebateState, argument string) {
			ds.BearHistory += "\n" + argument
		},
	})
}
