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

// NewNewsAnalystNode gathers company and world news and writes the news
// report.
func NewNewsAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newReactAnalystNode(ctx, deps, roleSpec{
		node:       consts.NewsAnalyst,
		role:       consts.Agent_NewsAnalyst,
		promptPath: "analysts/news_analyst",
		tools: []tool.BaseTool{
			tools.NewFinnhubNewsOnlineTool(deps.Toolkit),
			tools.NewGlobalNewsSearchTool(deps.Toolkit),
			tools.NewGoogleNewsTool(deps.Toolkit),
			tools.NewFinnhubNewsTool(deps.Toolkit),
			tools.NewRedditNewsTool(deps.Toolkit),
		},
		setReport: func(state *models.TradingState, report string) {
			state.NewsReport = report
		},
	})
}
