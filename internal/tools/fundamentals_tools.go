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

// NewInsiderSentimentTool reports Finnhub insider sentiment for the 30 days
// before curr_date.
func NewInsiderSentimentTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_finnhub_company_insider_sentiment",
			Desc: "Retrieve insider sentiment information about a company (retrieved from public SEC information) for the past 30 days.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker symbol for the company",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date you are trading at, yyyy-mm-dd",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.InsiderInput) (*models.InsiderOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).
				Msg("calling get_finnhub_company_insider_sentiment tool")

			report, err := tk.InsiderSentimentReport(input.Ticker, input.CurrDate, 30)
			return &models.InsiderOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewInsiderTransactionsTool reports Finnhub insider transactions for the
// 30 days before curr_date.
func NewInsiderTransactionsTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_finnhub_company_insider_transactions",
			Desc: "Retrieve insider transaction information about a company (retrieved from public SEC information) for the past 30 days.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker symbol for the company",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date you are trading at, yyyy-mm-dd",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.InsiderInput) (*models.InsiderOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).
				Msg("calling get_finnhub_company_insider_transactions tool")

			report, err := tk.InsiderTransactionsReport(input.Ticker, input.CurrDate, 30)
			return &models.InsiderOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewBalanceSheetTool reports the most recent balance sheet published on or
// before curr_date from the SimFin snapshot.
func NewBalanceSheetTool(tk *dataflows.Toolkit) tool.BaseTool {
	return newStatementTool(tk, "get_balance_sheet", dataflows.StatementBalanceSheet,
		"Retrieve the most recent balance sheet of a company published on or before curr_date.")
}

// NewCashflowTool reports the most recent cash flow statement published on
// or before curr_date from the SimFin snapshot.
func NewCashflowTool(tk *dataflows.Toolkit) tool.BaseTool {
	return newStatementTool(tk, "get_cashflow", dataflows.StatementCashFlow,
		"Retrieve the most recent cash flow statement of a company published on or before curr_date.")
}

// NewIncomeStatementTool reports the most recent income statement published
// on or before curr_date from the SimFin snapshot.
func NewIncomeStatementTool(tk *dataflows.Toolkit) tool.BaseTool {
	return newStatementTool(tk, "get_income_statement", dataflows.StatementIncome,
		"Retrieve the most recent income statement of a company published on or before curr_date.")
}

func newStatementTool(tk *dataflows.Toolkit, name, kind, desc string) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: name,
			Desc: desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"ticker": {
					Type:     "string",
					Desc:     "Ticker symbol for the company",
					Required: true,
				},
				"freq": {
					Type:     "string",
					Desc:     "Reporting frequency: 'annual' or 'quarterly'",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "Current date you are trading at, yyyy-mm-dd",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.StatementInput) (*models.StatementOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("freq", input.Freq).Str("curr_date", input.CurrDate).
				Str("kind", kind).Msg("calling statement tool")

			report, err := tk.StatementReport(kind, input.Ticker, input.Freq, input.CurrDate)
			return &models.StatementOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewFundamentalsSearchTool asks the web-search model for fundamental data
// on a ticker.
func NewFundamentalsSearchTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_fundamentals_openai",
			Desc: "Retrieve the latest fundamental information about a given stock on a given date by using OpenAI's news API.",
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
		func(ctx context.Context, input models.FundamentalsSearchInput) (*models.FundamentalsSearchOutput, error) {
			logger.Info().Str("ticker", input.Ticker).Str("curr_date", input.CurrDate).
				Msg("calling get_fundamentals_openai tool")

			report, err := tk.FundamentalsSearch(input.Ticker, input.CurrDate)
			return &models.FundamentalsSearchOutput{Result: observe(report, err)}, nil
		},
	)
}
