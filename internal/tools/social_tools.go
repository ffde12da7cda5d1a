package tools

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewRedditStockInfoTool serves company discussion threads from the offline
// reddit dumps, looking back 7 days from curr_date with at most 5 posts per
// day.
func NewRedditStockInfoTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_reddit_stock_info_offline",
			Desc: "Retrieve the latest news about a given stock from offline Reddit data, given the current date.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker of a company, e.g. AAPL, TSM",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date in yyyy-mm-dd format to get news for",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.RedditStockInfoInput) (*models.RedditStockInfoOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).
				Msg("calling get_reddit_stock_info_offline tool")

			report, err := tk.RedditCompanyNewsReport(input.Ticker, input.CurrDate, 7, 5)
			return &models.RedditStockInfoOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewRedditStockInfoOnlineTool serves recent company posts from the live
// public API.
func NewRedditStockInfoOnlineTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_reddit_stock_info_online",
			Desc: "Retrieve recent news about a given stock from online Reddit posts.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker of a company, e.g. AAPL, TSM",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "How many days back to search for posts (default: 7)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.RedditStockOnlineInput) (*models.RedditStockOnlineOutput, error) {
			days := input.LookBackDays
			if days <= 0 {
				days = 7
			}

			logger.Info().Str("ticker", input.Ticker).Int("look_back_days", days).
				Msg("calling get_reddit_stock_info_online tool")

			report, err := tk.RedditStockInfoReport(input.Ticker, days)
			return &models.RedditStockOnlineOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewStockNewsSearchTool asks the web-search model for recent social media
// discussion of a ticker. Only OpenAI-compatible providers support it; the
// observation says so for the rest.
func NewStockNewsSearchTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stock_news_openai",
			Desc: "Retrieve the latest news about a given stock by using OpenAI's news API.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "The company's ticker",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date in yyyy-mm-dd format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.StockNewsSearchInput) (*models.StockNewsSearchOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).
				Msg("calling get_stock_news_openai tool")

			report, err := tk.StockNewsSearch(input.Ticker, input.CurrDate)
			return &models.StockNewsSearchOutput{Result: observe(report, err)}, nil
		},
	)
}
