package analysts

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/tools"
)

// NewFundamentalsAnalystNode reads insider activity and financial
// statements and writes the fundamentals report.
func NewFundamentalsAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newReactAnalystNode(ctx, deps, roleSpec{
		node:       consts.FundamentalsAnalyst,
		role:       consts.Agent_FundamentalsAnalyst,
		promptPath: "analysts/fundamentals_analyst",
		tools: []tool.BaseTool{
			tools.NewFundamentalsSearchTool(deps.Toolkit),
			tools.NewInsiderSentimentTool(deps.Toolkit),
			tools.NewInsiderTransactionsTool(deps.Toolkit),
			tools.NewBalanceSheetTool(deps.Toolkit),
			tools.NewCashflowTool(deps.Toolkit),
			tools.NewIncomeStatementTool(deps.Toolkit),
		},
		setReport: func(state *models.TradingState, report string) {
			state.FundamentalsReport = report
		},
	})
}
