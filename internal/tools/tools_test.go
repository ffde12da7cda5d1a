package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/tool"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/models"
)

func testToolkit(t *testing.T) (*dataflows.Toolkit, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.CacheEnabled = false
	cfg.OnlineTools = false
	return dataflows.NewToolkit(cfg), cfg
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// weekdayPriceCSV renders one bar per weekday between start and end with a
// slowly rising close, enough history for the indicator warmup periods.
func weekdayPriceCSV(t *testing.T, start, end string) string {
	t.Helper()
	day, err := time.Parse("2006-01-02", start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	last, err := time.Parse("2006-01-02", end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}

	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")
	price := 100.0
	for !day.After(last) {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			fmt.Fprintf(&sb, "%s,%.2f,%.2f,%.2f,%.2f,%.2f,%d\n",
				day.Format("2006-01-02"), price, price+1.0, price-1.0, price+0.5, price+0.5, 1000000)
			price += 0.25
		}
		day = day.AddDate(0, 0, 1)
	}
	return sb.String()
}

func writeWeekdayPrices(t *testing.T, cfg *config.Config, symbol, start, end string) {
	t.Helper()
	path := filepath.Join(cfg.DataDir, "market_data", "price_data",
		symbol+"-YFin-data-2015-01-01-2025-03-25.csv")
	writeFixture(t, path, weekdayPriceCSV(t, start, end))
}

// runTool invokes a tool through the same JSON boundary the agents use and
// returns the Result field of its output.
func runTool(t *testing.T, bt tool.BaseTool, args string) string {
	t.Helper()
	inv, ok := bt.(tool.InvokableTool)
	if !ok {
		t.Fatal("tool is not invokable")
	}
	out, err := inv.InvokableRun(context.Background(), args)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}
	var payload struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal tool output %q: %v", out, err)
	}
	return payload.Result
}

func TestToolNamesAreStable(t *testing.T) {
	tk, _ := testToolkit(t)

	want := map[string]tool.BaseTool{
		"get_daily_stock_data":                     NewStockDataTool(tk),
		"get_YFin_data":                            NewYFinDataTool(tk),
		"get_stock_stats_indicators_window":        NewStockIndicatorTool(tk),
		"get_market_data":                          NewLongportDataTool(tk),
		"get_reddit_stock_info_offline":            NewRedditStockInfoTool(tk),
		"get_reddit_stock_info_online":             NewRedditStockInfoOnlineTool(tk),
		"get_stock_news_openai":                    NewStockNewsSearchTool(tk),
		"get_finnhub_news":                         NewFinnhubNewsTool(tk),
		"get_finnhub_news_online":                  NewFinnhubNewsOnlineTool(tk),
		"get_reddit_news":                          NewRedditNewsTool(tk),
		"get_google_news":                          NewGoogleNewsTool(tk),
		"get_global_news_openai":                   NewGlobalNewsSearchTool(tk),
		"get_finnhub_company_insider_sentiment":    NewInsiderSentimentTool(tk),
		"get_finnhub_company_insider_transactions": NewInsiderTransactionsTool(tk),
		"get_balance_sheet":                        NewBalanceSheetTool(tk),
		"get_cashflow":                             NewCashflowTool(tk),
		"get_income_statement":                     NewIncomeStatementTool(tk),
		"get_fundamentals_openai":                  NewFundamentalsSearchTool(tk),
	}

	for name, bt := range want {
		info, err := bt.Info(context.Background())
		if err != nil {
			t.Fatalf("Info for %s: %v", name, err)
		}
		if info.Name != name {
			t.Fatalf("expected tool name %q, got %q", name, info.Name)
		}
	}
}

func TestStockDataToolReturnsRows(t *testing.T) {
	tk, cfg := testToolkit(t)
	writeWeekdayPrices(t, cfg, "AAPL", "2024-05-27", "2024-06-07")

	inv := NewStockDataTool(tk).(tool.InvokableTool)
	out, err := inv.InvokableRun(context.Background(),
		`{"symbol": "AAPL", "start_date": "2024-06-03", "end_date": "2024-06-04"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}

	var payload models.StockDataOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if payload.Symbol != "AAPL" {
		t.Fatalf("expected symbol AAPL, got %q", payload.Symbol)
	}
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 weekday rows, got %d", len(payload.Data))
	}
	if payload.Data[0].Date != "2024-06-03" || payload.Data[1].Date != "2024-06-04" {
		t.Fatalf("unexpected dates %q, %q", payload.Data[0].Date, payload.Data[1].Date)
	}
	if payload.Data[0].Volume != 1000000 {
		t.Fatalf("expected volume 1000000, got %d", payload.Data[0].Volume)
	}
}

func TestStockDataToolMissingFileIsEmpty(t *testing.T) {
	tk, _ := testToolkit(t)

	inv := NewStockDataTool(tk).(tool.InvokableTool)
	out, err := inv.InvokableRun(context.Background(),
		`{"symbol": "ZZZZ", "start_date": "2024-06-03", "end_date": "2024-06-04"}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}

	var payload models.StockDataOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if len(payload.Data) != 0 {
		t.Fatalf("expected no rows for missing data file, got %d", len(payload.Data))
	}
}

func TestIndicatorWindowReport(t *testing.T) {
	tk, cfg := testToolkit(t)
	writeWeekdayPrices(t, cfg, "AAPL", "2024-01-02", "2024-06-07")

	result := runTool(t, NewStockIndicatorTool(tk),
		`{"symbol": "AAPL", "indicator": "close_10_ema", "curr_date": "2024-06-07", "look_back_days": 6}`)

	if !strings.HasPrefix(result, "## close_10_ema values from 2024-06-01 to 2024-06-07:\n\n") {
		t.Fatalf("unexpected report header: %q", result)
	}
	for _, weekend := range []string{"2024-06-01", "2024-06-02"} {
		want := weekend + ": N/A: Not a trading day (weekend or holiday) or data not available for this date."
		if !strings.Contains(result, want) {
			t.Fatalf("missing weekend sentinel for %s: %q", weekend, result)
		}
	}
	for _, weekday := range []string{"2024-06-03", "2024-06-04", "2024-06-05", "2024-06-06", "2024-06-07"} {
		line := lineFor(t, result, weekday)
		if strings.Contains(line, "N/A") {
			t.Fatalf("weekday %s should carry a value, got %q", weekday, line)
		}
	}
	if !strings.HasSuffix(result, "10 EMA: A responsive short-term average. Usage: Capture quick shifts in momentum and potential entry points. Tips: Prone to noise in choppy markets; use alongside longer averages for filtering false signals.") {
		t.Fatalf("missing indicator description: %q", result)
	}
}

func lineFor(t *testing.T, report, date string) string {
	t.Helper()
	for _, line := range strings.Split(report, "\n") {
		if strings.HasPrefix(line, date+": ") {
			return line
		}
	}
	t.Fatalf("no line for date %s in %q", date, report)
	return ""
}

func TestIndicatorWindowUnsupportedIndicator(t *testing.T) {
	tk, _ := testToolkit(t)

	result := runTool(t, NewStockIndicatorTool(tk),
		`{"symbol": "AAPL", "indicator": "bogus", "curr_date": "2024-06-07", "look_back_days": 6}`)

	if !strings.HasPrefix(result, "Error: indicator bogus is not supported. Please choose from: ") {
		t.Fatalf("expected unsupported indicator message, got %q", result)
	}
	if !strings.Contains(result, "close_50_sma") {
		t.Fatalf("supported list should name the catalog, got %q", result)
	}
}

func TestIndicatorWindowMissingDataFile(t *testing.T) {
	tk, _ := testToolkit(t)

	result := runTool(t, NewStockIndicatorTool(tk),
		`{"symbol": "ZZZZ", "indicator": "rsi", "curr_date": "2024-06-07", "look_back_days": 6}`)

	want := "Error: Offline data file not found for ticker ZZZZ. Please ensure the necessary data is downloaded."
	if result != want {
		t.Fatalf("expected availability message, got %q", result)
	}
}

func TestFinnhubNewsToolConvertsRangeToLookback(t *testing.T) {
	tk, cfg := testToolkit(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "finnhub_data", "news_data", "AAPL_data_formatted.json"),
		`{"2024-05-28": [{"headline": "Apple ships", "summary": "Great quarter."}]}`)

	result := runTool(t, NewFinnhubNewsTool(tk),
		`{"ticker": "AAPL", "start_date": "2024-05-27", "end_date": "2024-06-01"}`)

	if !strings.HasPrefix(result, "## AAPL News, from 2024-05-27 to 2024-06-01:") {
		t.Fatalf("unexpected header: %q", result)
	}
	if !strings.Contains(result, "Apple ships") {
		t.Fatalf("missing article: %q", result)
	}
}

func TestStatementToolReportsLatestFiling(t *testing.T) {
	tk, cfg := testToolkit(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "fundamental_data", "simfin_data_all",
		"balance_sheet", "companies", "us", "us-balance-annual.csv"),
		"Ticker;SimFinId;Currency;Fiscal Year;Report Date;Publish Date;Shares (Basic);Total Assets\n"+
			"AAPL;111052;USD;2024;2024-09-28;2024-11-01;15408095000;364980000000\n")

	result := runTool(t, NewBalanceSheetTool(tk),
		`{"ticker": "AAPL", "freq": "annual", "curr_date": "2024-12-01"}`)

	if !strings.HasPrefix(result, "## annual balance sheet for AAPL released on 2024-11-01: \n") {
		t.Fatalf("unexpected header: %q", result)
	}
	if !strings.Contains(result, "364980000000") {
		t.Fatalf("missing statement value: %q", result)
	}
}

func TestWebSearchToolsGuardProvider(t *testing.T) {
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.CacheEnabled = false
	cfg.OnlineTools = false
	cfg.LLMProvider = "deepseek"
	tk := dataflows.NewToolkit(cfg)

	result := runTool(t, NewFundamentalsSearchTool(tk),
		`{"ticker": "AAPL", "curr_date": "2024-06-03"}`)
	want := "Error: get_fundamentals_openai is only supported for OpenAI-compatible providers, but the current provider is 'deepseek'."
	if result != want {
		t.Fatalf("expected provider guard, got %q", result)
	}

	result = runTool(t, NewStockNewsSearchTool(tk),
		`{"ticker": "AAPL", "curr_date": "2024-06-03"}`)
	if !strings.Contains(result, "get_stock_news_openai is only supported") {
		t.Fatalf("expected provider guard, got %q", result)
	}
}

func TestLongportToolWithoutCredentials(t *testing.T) {
	tk, _ := testToolkit(t)

	inv := NewLongportDataTool(tk).(tool.InvokableTool)
	out, err := inv.InvokableRun(context.Background(), `{"symbol": "700.HK", "count": 10}`)
	if err != nil {
		t.Fatalf("InvokableRun: %v", err)
	}

	var payload models.MarketDataOutput
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if !strings.Contains(payload.Error, "longport API credentials not configured") {
		t.Fatalf("expected credentials observation, got %q", payload.Error)
	}
}
