package dataflows

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// Bounds of the bundled offline price files.
const (
	OfflineDataStart = "2015-01-01"
	OfflineDataEnd   = "2025-03-25"
)

// YahooFinanceClient reads daily price history, online via finance-go or
// offline from bundled CSV files under DataDir.
type YahooFinanceClient struct {
	cache   *CacheManager
	retry   RetryPolicy
	dataDir string
}

func NewYahooFinanceClient(cfg *Config) *YahooFinanceClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	return &YahooFinanceClient{
		cache:   NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
		retry:   PolicyFromConfig(cfg),
		dataDir: cfg.DataDir,
	}
}

// GetQuote gets current quote data for a symbol.
func (yf *YahooFinanceClient) GetQuote(symbol string) (*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached MarketData
	if yf.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *MarketData
	err := WithRetry(yf.retry, func() error {
		q, err := quote.Get(symbol)
		if err != nil {
			return fmt.Errorf("get quote for %s: %w", symbol, err)
		}

		result = &MarketData{
			Symbol:   symbol,
			Date:     time.Now(),
			Open:     decimal.NewFromFloat(q.RegularMarketOpen),
			High:     decimal.NewFromFloat(q.RegularMarketDayHigh),
			Low:      decimal.NewFromFloat(q.RegularMarketDayLow),
			Close:    decimal.NewFromFloat(q.RegularMarketPrice),
			AdjClose: decimal.NewFromFloat(q.RegularMarketPrice),
			Volume:   int64(q.RegularMarketVolume),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yf.cache.Set("yahoo", "quote", symbol, result)
	return result, nil
}

// GetHistoricalData gets daily bars between start and end from Yahoo Finance.
func (yf *YahooFinanceClient) GetHistoricalData(symbol string, start, end time.Time) ([]*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []*MarketData
	if yf.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	var result []*MarketData
	err := WithRetry(yf.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		result = make([]*MarketData, 0)
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, &MarketData{
				Symbol:   symbol,
				Date:     time.Unix(int64(bar.Timestamp), 0).UTC(),
				Open:     bar.Open,
				High:     bar.High,
				Low:      bar.Low,
				Close:    bar.Close,
				AdjClose: bar.AdjClose,
				Volume:   int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("get historical data for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yf.cache.Set("yahoo", "historical", cacheKey, result)
	return result, nil
}

// offlinePricePath is the bundled per-symbol price history file.
func (yf *YahooFinanceClient) offlinePricePath(symbol string) string {
	name := fmt.Sprintf("%s-YFin-data-%s-%s.csv", symbol, OfflineDataStart, OfflineDataEnd)
	return filepath.Join(yf.dataDir, "market_data", "price_data", name)
}

// GetOfflineData loads daily bars from the bundled CSV, filtered to
// [start, end]. Requests past the bundle's end date are rejected.
func (yf *YahooFinanceClient) GetOfflineData(symbol string, start, end time.Time) ([]*MarketData, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	endStr := end.Format("2006-01-02")
	if endStr > OfflineDataEnd {
		return nil, fmt.Errorf("%s is outside of the data range of %s to %s", endStr, OfflineDataStart, OfflineDataEnd)
	}

	rows, err := ReadPriceCSV(yf.offlinePricePath(symbol), symbol)
	if err != nil {
		return nil, err
	}

	startStr := start.Format("2006-01-02")
	filtered := make([]*MarketData, 0, len(rows))
	for _, row := range rows {
		d := row.Date.Format("2006-01-02")
		if d >= startStr && d <= endStr {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ReadPriceCSV parses a Yahoo-style price CSV
// (Date,Open,High,Low,Close,Adj Close,Volume).
func ReadPriceCSV(path, symbol string) ([]*MarketData, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("price data for %s not found at %s: %w", symbol, path, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("open price data: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read price csv header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"Date", "Open", "High", "Low", "Close", "Volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("price csv missing column %q", required)
		}
	}

	var rows []*MarketData
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price csv row: %w", err)
		}

		// Dates may carry a time suffix; the first 10 bytes are YYYY-MM-DD.
		rawDate := strings.TrimSpace(record[col["Date"]])
		if len(rawDate) > 10 {
			rawDate = rawDate[:10]
		}
		date, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			return nil, fmt.Errorf("parse price csv date %q: %w", rawDate, err)
		}

		row := &MarketData{Symbol: symbol, Date: date}
		if row.Open, err = decimal.NewFromString(record[col["Open"]]); err != nil {
			return nil, fmt.Errorf("parse open: %w", err)
		}
		if row.High, err = decimal.NewFromString(record[col["High"]]); err != nil {
			return nil, fmt.Errorf("parse high: %w", err)
		}
		if row.Low, err = decimal.NewFromString(record[col["Low"]]); err != nil {
			return nil, fmt.Errorf("parse low: %w", err)
		}
		if row.Close, err = decimal.NewFromString(record[col["Close"]]); err != nil {
			return nil, fmt.Errorf("parse close: %w", err)
		}
		if adjIdx, ok := col["Adj Close"]; ok {
			if row.AdjClose, err = decimal.NewFromString(record[adjIdx]); err != nil {
				return nil, fmt.Errorf("parse adj close: %w", err)
			}
		} else {
			row.AdjClose = row.Close
		}
		if row.Volume, err = strconv.ParseInt(strings.TrimSpace(record[col["Volume"]]), 10, 64); err != nil {
			return nil, fmt.Errorf("parse volume: %w", err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// FormatPriceReport renders bars as a CSV block with the report header the
// analysts expect.
func FormatPriceReport(symbol string, start, end time.Time, rows []*MarketData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Raw Market Data for %s from %s to %s:\n\n",
		symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	sb.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s,%d\n",
			row.Date.Format("2006-01-02"),
			row.Open.StringFixed(2),
			row.High.StringFixed(2),
			row.Low.StringFixed(2),
			row.Close.StringFixed(2),
			row.AdjClose.StringFixed(2),
			row.Volume,
		)
	}
	return sb.String()
}
