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

// NewSocialMediaAnalystNode reads Reddit discussion and web-search
// sentiment and writes the sentiment report.
func NewSocialMediaAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	return newReactAnalystNode(ctx, deps, roleSpec{
		node:       consts.SocialMediaAnalyst,
		role:       consts.Agent_SocialAnalyst,
		promptPath: "analysts/social_analyst",
		tools: []tool.BaseTool{
			tools.NewStockNewsSearchTool(deps.Toolkit),
			tools.NewRedditStockInfoOnlineTool(deps.Toolkit),
			tools.NewRedditStockInfoTool(deps.Toolkit),
		},
		setReport: func(state *models.TradingState, report string) {
			state.SentimentReport = report
		},
	})
}
