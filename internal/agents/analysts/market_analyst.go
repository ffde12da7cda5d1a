package analysts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/indicators"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/tools"
	"github.com/lilong555/tradingagent/internal/utils"
)

// marketIndicators are the columns of the report table, in display order.
var marketIndicators = []string{"rsi", "macd", "boll_ub", "boll_lb", "close_50_sma", "close_200_sma"}

// marketLookbackDays of history feed the indicator engine so the slow
// moving averages are defined on the trade date.
const marketLookbackDays = 365

// NewMarketAnalystNode builds the technical analysis node. Unlike the other
// analysts it does not hand tools to the model: it fetches a year of daily
// bars itself, computes the indicator table deterministically and asks the
// model only to narrate the numbers.
func NewMarketAnalystNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	stockData, err := findStockDataTool(ctx, tools.NewStockDataTool(deps.Toolkit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", consts.MarketAnalyst, err)
	}

	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		var next string
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			table := indicatorTable(ctx, stockData, state.CompanyOfInterest, state.TradeDate)

			sysPrompt, err := utils.LoadPrompt("analysts/market_analyst")
			if err != nil {
				return err
			}
			input := []*schema.Message{
				schema.SystemMessage(sysPrompt),
				schema.UserMessage(fmt.Sprintf(
					"Technical indicators for %s as of %s:\n\n%s",
					state.CompanyOfInterest, state.TradeDate, table)),
			}
			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Quick.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call, input, deps.Cfg, consts.Agent_MarketAnalyst)

			state.MarketReport = out.Content
			state.Messages = append(state.Messages, out)
			state.Sender = consts.Agent_MarketAnalyst
			state.Goto = state.NextAnalyst(consts.MarketAnalyst)
			next = state.Goto
			logger.Debug().Str("node", consts.MarketAnalyst).Str("next", next).Msg("analyst finished")
			return nil
		})
		return next, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("analyze", compose.InvokableLambdaWithOption(run))
	_ = g.AddEdge(compose.START, "analyze")
	_ = g.AddEdge("analyze", compose.END)
	return g, nil
}

// findStockDataTool verifies the raw OHLCV tool is present and invokable.
// Shipping the market analyst without its data source is a config error,
// not something to degrade at runtime.
func findStockDataTool(ctx context.Context, t tool.BaseTool) (tool.InvokableTool, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("read tool info: %w", err)
	}
	if info.Name != tools.StockDataToolName {
		return nil, fmt.Errorf("required tool %s not found", tools.StockDataToolName)
	}
	inv, ok := t.(tool.InvokableTool)
	if !ok {
		return nil, fmt.Errorf("tool %s is not invokable", tools.StockDataToolName)
	}
	return inv, nil
}

// indicatorTable fetches a year of bars ending on tradeDate and renders the
// indicator values as a markdown table. Data problems become cell text so
// the narration still happens.
func indicatorTable(ctx context.Context, stockData tool.InvokableTool, symbol, tradeDate string) string {
	bars, err := fetchBars(ctx, stockData, symbol, tradeDate)
	if err != nil {
		return fmt.Sprintf("Error: could not retrieve market data for %s: %v", symbol, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "| Indicator | Value (as of %s) |\n", tradeDate)
	sb.WriteString("|---|---|\n")
	for _, name := range marketIndicators {
		fmt.Fprintf(&sb, "| %s | %s |\n", name, latestValue(name, bars))
	}
	return sb.String()
}

func fetchBars(ctx context.Context, stockData tool.InvokableTool, symbol, tradeDate string) ([]indicators.Bar, error) {
	end, err := time.Parse("2006-01-02", tradeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid trade date %q", tradeDate)
	}
	start := end.AddDate(0, 0, -marketLookbackDays)

	args, err := json.Marshal(models.StockDataInput{
		Symbol:    symbol,
		StartDate: start.Format("2006-01-02"),
		EndDate:   tradeDate,
	})
	if err != nil {
		return nil, err
	}
	raw, err := stockData.InvokableRun(ctx, string(args))
	if err != nil {
		return nil, err
	}

	var out models.StockDataOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s output: %w", tools.StockDataToolName, err)
	}

	bars := make([]indicators.Bar, 0, len(out.Data))
	for _, row := range out.Data {
		bars = append(bars, indicators.Bar{
			Date:   row.Date,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: float64(row.Volume),
		})
	}
	return bars, nil
}

func latestValue(name string, bars []indicators.Bar) string {
	values, err := indicators.Series(name, bars)
	if err != nil {
		if errors.Is(err, indicators.ErrNotEnoughData) {
			return "Not enough data to calculate"
		}
		return fmt.Sprintf("Error: %v", err)
	}
	if len(values) == 0 {
		return "Not enough data to calculate"
	}
	return fmt.Sprintf("%.4f", values[len(values)-1].Value)
}
