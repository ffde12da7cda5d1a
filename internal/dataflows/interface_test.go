package dataflows

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMarketDataReportMissingFile(t *testing.T) {
	tk := NewToolkit(testConfig(t))

	report, err := tk.MarketDataReport("ZZZZ", "2024-06-01", "2024-06-03")
	if err != nil {
		t.Fatalf("MarketDataReport: %v", err)
	}
	want := "Error: Offline data file not found for ticker ZZZZ. Please ensure the necessary data is downloaded."
	if report != want {
		t.Fatalf("expected availability message, got %q", report)
	}
}

func TestMarketDataReportOffline(t *testing.T) {
	cfg := testConfig(t)
	writePriceFixture(t, cfg, "AAPL")
	tk := NewToolkit(cfg)

	report, err := tk.MarketDataReport("AAPL", "2024-06-01", "2024-06-03")
	if err != nil {
		t.Fatalf("MarketDataReport: %v", err)
	}
	if !strings.HasPrefix(report, "## Raw Market Data for AAPL from 2024-06-01 to 2024-06-03:") {
		t.Fatalf("unexpected report header: %q", report)
	}
	if !strings.Contains(report, "Date,Open,High,Low,Close,Adj Close,Volume") {
		t.Fatalf("report missing CSV header: %q", report)
	}
	if !strings.Contains(report, "2024-06-03,192.90,194.99,192.52,194.03,194.03,50080500") {
		t.Fatalf("report missing data row: %q", report)
	}
}

func TestMarketDataReportEmptyWindow(t *testing.T) {
	cfg := testConfig(t)
	writePriceFixture(t, cfg, "AAPL")
	tk := NewToolkit(cfg)

	report, err := tk.MarketDataReport("AAPL", "2024-06-08", "2024-06-09")
	if err != nil {
		t.Fatalf("MarketDataReport: %v", err)
	}
	want := "No data found for symbol 'AAPL' between 2024-06-08 and 2024-06-09"
	if report != want {
		t.Fatalf("expected empty-window message, got %q", report)
	}
}

func TestFinnhubNewsReportFormatting(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "finnhub_data", "news_data", "AAPL_data_formatted.json"), finnhubNewsFixture)
	tk := NewToolkit(cfg)

	report, err := tk.FinnhubNewsReport("AAPL", "2024-06-01", 5)
	if err != nil {
		t.Fatalf("FinnhubNewsReport: %v", err)
	}
	if !strings.HasPrefix(report, "## AAPL News, from 2024-05-27 to 2024-06-01:") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "### Apple ships (2024-05-28)\nGreat quarter.") {
		t.Fatalf("missing news entry: %q", report)
	}
	if strings.Contains(report, "Later news") {
		t.Fatalf("entry outside window leaked into report: %q", report)
	}
}

func TestFinnhubNewsReportEmptyIsBlank(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "finnhub_data", "news_data", "AAPL_data_formatted.json"), finnhubNewsFixture)
	tk := NewToolkit(cfg)

	report, err := tk.FinnhubNewsReport("AAPL", "2023-01-10", 5)
	if err != nil {
		t.Fatalf("FinnhubNewsReport: %v", err)
	}
	if report != "" {
		t.Fatalf("expected empty report when no news in window, got %q", report)
	}
}

func TestInsiderSentimentReportMissingData(t *testing.T) {
	tk := NewToolkit(testConfig(t))

	report, err := tk.InsiderSentimentReport("AAPL", "2024-06-01", 30)
	if err != nil {
		t.Fatalf("InsiderSentimentReport: %v", err)
	}
	want := "Offline Finnhub insider sentiment data not found. This feature requires a local data cache."
	if report != want {
		t.Fatalf("expected availability message, got %q", report)
	}
}

func TestInsiderTransactionsReportFormatting(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "finnhub_data", "insider_trans", "AAPL_data_formatted.json"), insiderTransFixture)
	tk := NewToolkit(cfg)

	report, err := tk.InsiderTransactionsReport("AAPL", "2024-05-31", 30)
	if err != nil {
		t.Fatalf("InsiderTransactionsReport: %v", err)
	}
	if !strings.HasPrefix(report, "## AAPL insider transactions from 2024-05-01 to 2024-05-31:") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "### Filing Date: 2024-05-20, CROW TIMOTHY:") {
		t.Fatalf("missing transaction entry: %q", report)
	}
	if !strings.Contains(report, "Transaction Price: 190.5") {
		t.Fatalf("missing transaction price: %q", report)
	}
}

func TestStatementReportFormatting(t *testing.T) {
	cfg := testConfig(t)
	writeBalanceFixture(t, cfg)
	tk := NewToolkit(cfg)

	report, err := tk.StatementReport(StatementBalanceSheet, "AAPL", "annual", "2024-12-01")
	if err != nil {
		t.Fatalf("StatementReport: %v", err)
	}
	if !strings.HasPrefix(report, "## annual balance sheet for AAPL released on 2024-11-01: \n") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "Total Assets") || !strings.Contains(report, "364980000000") {
		t.Fatalf("missing statement fields: %q", report)
	}
	if !strings.Contains(report, "total assets equal the sum of liabilities and equity.") {
		t.Fatalf("missing trailing description: %q", report)
	}
}

func TestStatementReportMissingFile(t *testing.T) {
	tk := NewToolkit(testConfig(t))

	report, err := tk.StatementReport(StatementCashFlow, "AAPL", "quarterly", "2024-12-01")
	if err != nil {
		t.Fatalf("StatementReport: %v", err)
	}
	if !strings.HasPrefix(report, "Error: Offline data file not found at ") {
		t.Fatalf("expected availability message, got %q", report)
	}
	if !strings.HasSuffix(report, "Please ensure the necessary data is downloaded.") {
		t.Fatalf("expected download hint, got %q", report)
	}
}

func TestRedditGlobalNewsReportDigest(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "reddit_data", "global_news", "worldnews.jsonl"), redditDumpFixture)
	tk := NewToolkit(cfg)

	report, err := tk.RedditGlobalNewsReport("2024-06-03", 1, 5)
	if err != nil {
		t.Fatalf("RedditGlobalNewsReport: %v", err)
	}
	if !strings.HasPrefix(report, "## Global News Reddit, from 2024-06-02 to 2024-06-03:") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "### Apple hits record\n\nAAPL is up") {
		t.Fatalf("missing post with body: %q", report)
	}
	if !strings.Contains(report, "### Markets wobble\n\n") {
		t.Fatalf("missing title-only post: %q", report)
	}
	if strings.Contains(report, "Old news") {
		t.Fatalf("post outside window leaked into report: %q", report)
	}
}

func TestRedditCompanyNewsReportHeader(t *testing.T) {
	cfg := testConfig(t)
	writeFixture(t, filepath.Join(cfg.DataDir, "reddit_data", "company_news", "stocks.jsonl"), redditDumpFixture)
	tk := NewToolkit(cfg)

	report, err := tk.RedditCompanyNewsReport("AAPL", "2024-06-03", 1, 5)
	if err != nil {
		t.Fatalf("RedditCompanyNewsReport: %v", err)
	}
	if !strings.HasPrefix(report, "## AAPL Offline Reddit News, from 2024-06-02 to 2024-06-03:") {
		t.Fatalf("unexpected header: %q", report)
	}
	if !strings.Contains(report, "### Apple hits record") {
		t.Fatalf("missing company post: %q", report)
	}
	if strings.Contains(report, "Markets wobble") {
		t.Fatalf("unrelated post leaked into company report: %q", report)
	}
}

func TestWebSearchProviderGuard(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLMProvider = "deepseek"
	tk := NewToolkit(cfg)

	report, err := tk.StockNewsSearch("AAPL", "2024-06-01")
	if err != nil {
		t.Fatalf("StockNewsSearch: %v", err)
	}
	want := "Error: get_stock_news_openai is only supported for OpenAI-compatible providers, but the current provider is 'deepseek'."
	if report != want {
		t.Fatalf("expected provider guard message, got %q", report)
	}

	report, err = tk.GlobalNewsSearch("2024-06-01")
	if err != nil {
		t.Fatalf("GlobalNewsSearch: %v", err)
	}
	if !strings.Contains(report, "get_global_news_openai is only supported") {
		t.Fatalf("expected provider guard message, got %q", report)
	}
}
