package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

// NewFinnhubNewsTool serves company news from the offline Finnhub snapshot.
// The date range is converted to a lookback window ending at end_date.
func NewFinnhubNewsTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_finnhub_news",
			Desc: "Retrieve the latest news about a given stock from Finnhub within a date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker of a company, e.g. AAPL, TSM",
					Required: true,
				},
				"start_date": {
					Type:     "string",
					Desc:     "Start date in yyyy-mm-dd format",
					Required: true,
				},
				"end_date": {
					Type:     "string",
					Desc:     "End date in yyyy-mm-dd format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.FinnhubNewsInput) (*models.FinnhubNewsOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("start", input.StartDate).Str("end", input.EndDate).
				Msg("calling get_finnhub_news tool")

			start, err := time.Parse("2006-01-02", input.StartDate)
			if err != nil {
				return &models.FinnhubNewsOutput{Result: fmt.Sprintf("Error: invalid start_date %q, expected yyyy-mm-dd", input.StartDate)}, nil
			}
			end, err := time.Parse("2006-01-02", input.EndDate)
			if err != nil {
				return &models.FinnhubNewsOutput{Result: fmt.Sprintf("Error: invalid end_date %q, expected yyyy-mm-dd", input.EndDate)}, nil
			}
			lookBackDays := int(end.Sub(start).Hours() / 24)

			report, err := tk.FinnhubNewsReport(input.Ticker, input.EndDate, lookBackDays)
			return &models.FinnhubNewsOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewFinnhubNewsOnlineTool serves company news fetched live from Finnhub.
func NewFinnhubNewsOnlineTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_finnhub_news_online",
			Desc: "Retrieve the latest news about a given stock from Finnhub within a date range using the online API.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker of a company, e.g. AAPL, TSM",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date in yyyy-mm-dd format",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "How many days to look back (default: 7)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.FinnhubNewsOnlineInput) (*models.FinnhubNewsOnlineOutput, error) {
			days := input.LookBackDays
			if days <= 0 {
				days = 7
			}

			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).Int("look_back_days", days).
				Msg("calling get_finnhub_news_online tool")

			report, err := tk.FinnhubNewsOnlineReport(input.Ticker, input.CurrDate, days)
			return &models.FinnhubNewsOnlineOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewRedditNewsTool serves global macro news threads from the offline
// reddit dumps, looking back 7 days with at most 5 posts per day.
func NewRedditNewsTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_reddit_news",
			Desc: "Retrieve global news from Reddit within a specified time frame.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"curr_date": {
					Type:     "string",
					Desc:     "Date you want to get news for in yyyy-mm-dd format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.RedditNewsInput) (*models.RedditNewsOutput, error) {
			logger.Info().Str("curr_date", input.CurrDate).Msg("calling get_reddit_news tool")

			report, err := tk.RedditGlobalNewsReport(input.CurrDate, 7, 5)
			return &models.RedditNewsOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewGoogleNewsTool serves news from the Google News RSS feed for a query,
// looking back 7 days from curr_date.
func NewGoogleNewsTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_google_news",
			Desc: "Retrieve the latest news from Google News based on a query and date range.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query": {
					Type:     "string",
					Desc:     "Query to search with",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date in yyyy-mm-dd format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.GoogleNewsInput) (*models.GoogleNewsOutput, error) {
			logger.Info().Str("query", input.Query).Str("curr_date", input.CurrDate).
				Msg("calling get_google_news tool")

			report, err := tk.GoogleNewsReport(input.Query, input.CurrDate, 7)
			return &models.GoogleNewsOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewGlobalNewsSearchTool asks the web-search model for recent
// macroeconomic news.
func NewGlobalNewsSearchTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_global_news_openai",
			Desc: "Retrieve the latest macroeconomics news on a given date using OpenAI's macroeconomics news API.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"curr_date": {
					Type:     "string",
					Desc:     "Current date in yyyy-mm-dd format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.GlobalNewsSearchInput) (*models.GlobalNewsSearchOutput, error) {
			logger.Info().Str("curr_date", input.CurrDate).Msg("calling get_global_news_openai tool")

			report, err := tk.GlobalNewsSearch(input.CurrDate)
			return &models.GlobalNewsSearchOutput{Result: observe(report, err)}, nil
		},
	)
}
