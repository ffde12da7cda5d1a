package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/indicators"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

// StockDataToolName is looked up by name at node construction; a market
// analyst without it is a configuration error.
const StockDataToolName = "get_daily_stock_data"

// notTradingDay is emitted for window dates with no bar.
const notTradingDay = "N/A: Not a trading day (weekend or holiday) or data not available for this date."

// indicatorWarmupDays of extra history are fetched before the window so
// slow indicators (close_200_sma) are already defined at the window start.
const indicatorWarmupDays = 365

// NewStockDataTool returns the raw daily OHLCV rows for a ticker and date
// range. The output is structured so callers can compute on it directly;
// an empty Data slice means the range could not be retrieved.
func NewStockDataTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: StockDataToolName,
			Desc: "Fetches daily OHLCV (Open, High, Low, Close, Volume) stock data for a given ticker and date range. This tool provides the raw data necessary for all technical analysis calculations.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock ticker symbol, e.g. AAPL",
					Required: true,
				},
				"start_date": {
					Type:     "string",
					Desc:     "The start date for the data retrieval in YYYY-MM-DD format",
					Required: true,
				},
				"end_date": {
					Type:     "string",
					Desc:     "The end date for the data retrieval in YYYY-MM-DD format",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.StockDataInput) (*models.StockDataOutput, error) {
			logger.Info().Str("symbol", input.Symbol).Str("start", input.StartDate).Str("end", input.EndDate).
				Msg("calling get_daily_stock_data tool")

			rows, err := tk.PriceHistory(input.Symbol, input.StartDate, input.EndDate)
			if err != nil {
				logger.Warn().Err(err).Str("symbol", input.Symbol).Msg("daily stock data fetch failed")
				return &models.StockDataOutput{Symbol: input.Symbol}, nil
			}

			data := make([]*models.MarketData, 0, len(rows))
			for _, row := range rows {
				data = append(data, toModelRow(row))
			}
			return &models.StockDataOutput{Symbol: input.Symbol, Data: data}, nil
		},
	)
}

// NewYFinDataTool returns the price history as a formatted report block.
func NewYFinDataTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_YFin_data",
			Desc: "Retrieve the stock price data for a given ticker symbol from Yahoo Finance.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "Ticker symbol of the company, e.g. AAPL, TSM",
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
		func(ctx context.Context, input models.YFinDataInput) (*models.YFinDataOutput, error) {
			logger.Info().Str("symbol", input.Symbol).Str("start", input.StartDate).Str("end", input.EndDate).
				Msg("calling get_YFin_data tool")

			report, err := tk.MarketDataReport(input.Symbol, input.StartDate, input.EndDate)
			return &models.YFinDataOutput{Result: observe(report, err)}, nil
		},
	)
}

// NewStockIndicatorTool reports one technical indicator's values per day
// over a lookback window ending at curr_date.
func NewStockIndicatorTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_stock_stats_indicators_window",
			Desc: "Get technical indicator analysis for a stock over a specified time window",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "Ticker symbol of the company",
					Required: true,
				},
				"indicator": {
					Type:     "string",
					Desc:     "Technical indicator to get the analysis and report of",
					Required: true,
				},
				"curr_date": {
					Type:     "string",
					Desc:     "The current trading date you are trading on, YYYY-mm-dd",
					Required: true,
				},
				"look_back_days": {
					Type:     "integer",
					Desc:     "How many days to look back",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.StockIndicatorInput) (*models.StockIndicatorOutput, error) {
			logger.Info().Str("symbol", input.Symbol).Str("indicator", input.Indicator).
				Str("curr_date", input.CurrDate).Int("look_back_days", input.LookBackDays).
				Msg("calling get_stock_stats_indicators_window tool")

			return &models.StockIndicatorOutput{Result: indicatorWindow(tk, input)}, nil
		},
	)
}

func indicatorWindow(tk *dataflows.Toolkit, input models.StockIndicatorInput) string {
	if !indicators.Supported(input.Indicator) {
		return fmt.Sprintf("Error: indicator %s is not supported. Please choose from: %s",
			input.Indicator, strings.Join(indicators.Names(), ", "))
	}
	curr, err := time.Parse("2006-01-02", input.CurrDate)
	if err != nil {
		return fmt.Sprintf("Error: invalid date format %q, expected YYYY-mm-dd", input.CurrDate)
	}
	if input.LookBackDays <= 0 {
		return "Error: look_back_days must be a positive number of days"
	}

	before := curr.AddDate(0, 0, -input.LookBackDays)
	fetchStart := before.AddDate(0, 0, -indicatorWarmupDays)
	rows, err := tk.PriceHistory(input.Symbol, fetchStart.Format("2006-01-02"), input.CurrDate)
	if err != nil {
		if errors.Is(err, dataflows.ErrDataUnavailable) {
			return fmt.Sprintf("Error: Offline data file not found for ticker %s. Please ensure the necessary data is downloaded.", input.Symbol)
		}
		return fmt.Sprintf("Error: failed to fetch market data for %s: %v", input.Symbol, err)
	}

	values, err := indicators.Series(input.Indicator, toBars(rows))
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}

	byDate := make(map[string]float64, len(values))
	for _, v := range values {
		byDate[v.Date] = v.Value
	}

	var sb strings.Builder
	for day := before; !day.After(curr); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		if v, ok := byDate[key]; ok {
			fmt.Fprintf(&sb, "%s: %.4f\n", key, v)
		} else {
			fmt.Fprintf(&sb, "%s: %s\n", key, notTradingDay)
		}
	}

	return fmt.Sprintf("## %s values from %s to %s:\n\n%s\n\n%s",
		input.Indicator,
		before.Format("2006-01-02"),
		input.CurrDate,
		sb.String(),
		indicators.Describe(input.Indicator))
}

// NewLongportDataTool serves recent daily bars from the Longport quote API,
// which covers HK/CN listed symbols that Yahoo Finance handles poorly.
func NewLongportDataTool(tk *dataflows.Toolkit) tool.BaseTool {
	logger := logging.NewLogger("tools")
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: "get_market_data",
			Desc: "Get recent daily market data for a specific symbol via the Longport quote API, preferred for HK/CN listed symbols",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"symbol": {
					Type:     "string",
					Desc:     "The stock symbol, e.g. 700.HK",
					Required: true,
				},
				"count": {
					Type:     "integer",
					Desc:     "Number of days to retrieve (default: 30)",
					Required: false,
				},
			}),
		},
		func(ctx context.Context, input models.MarketDataInput) (*models.MarketDataOutput, error) {
			if input.Symbol == "" {
				return &models.MarketDataOutput{Error: "Error: symbol parameter is required"}, nil
			}
			count := input.Count
			if count <= 0 {
				count = 30
			}

			logger.Info().Str("symbol", input.Symbol).Int("count", count).Msg("calling get_market_data tool")

			client, err := tk.Longport()
			if err != nil {
				return &models.MarketDataOutput{Error: fmt.Sprintf("Error: %v", err)}, nil
			}
			defer client.Close()

			rows, err := client.GetDailyCandlesticks(ctx, input.Symbol, count)
			if err != nil {
				logger.Warn().Err(err).Str("symbol", input.Symbol).Msg("longport candlestick fetch failed")
				return &models.MarketDataOutput{Error: fmt.Sprintf("Error: %v", err)}, nil
			}

			data := make([]*models.MarketData, 0, len(rows))
			for _, row := range rows {
				data = append(data, toModelRow(row))
			}
			return &models.MarketDataOutput{Data: data}, nil
		},
	)
}

func toModelRow(row *dataflows.MarketData) *models.MarketData {
	return &models.MarketData{
		Symbol: row.Symbol,
		Date:   row.Date.Format("2006-01-02"),
		Open:   row.Open.InexactFloat64(),
		High:   row.High.InexactFloat64(),
		Low:    row.Low.InexactFloat64(),
		Close:  row.Close.InexactFloat64(),
		Volume: row.Volume,
	}
}

func toBars(rows []*dataflows.MarketData) []indicators.Bar {
	bars := make([]indicators.Bar, 0, len(rows))
	for _, row := range rows {
		bars = append(bars, indicators.Bar{
			Date:   row.Date.Format("2006-01-02"),
			Open:   row.Open.InexactFloat64(),
			High:   row.High.InexactFloat64(),
			Low:    row.Low.InexactFloat64(),
			Close:  row.Close.InexactFloat64(),
			Volume: float64(row.Volume),
		})
	}
	return bars
}
