package dataflows

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// Offline snapshot categories under DataDir/finnhub_data.
const (
	OfflineNewsData     = "news_data"
	OfflineInsiderSenti = "insider_senti"
	OfflineInsiderTrans = "insider_trans"
)

// FinnhubClient handles Finnhub API operations plus the bundled offline
// snapshots of the same endpoints.
type FinnhubClient struct {
	client  *resty.Client
	cache   *CacheManager
	retry   RetryPolicy
	apiKey  string
	dataDir string
}

func NewFinnhubClient(cfg *Config) *FinnhubClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client:  client,
		cache:   NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
		retry:   PolicyFromConfig(cfg),
		apiKey:  cfg.FinnhubAPIKey,
		dataDir: cfg.DataDir,
	}
}

// FinnhubNews is one article as Finnhub returns it, online and in the
// offline news snapshots.
type FinnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// GetCompanyNews gets news articles for a company in [from, to].
func (fc *FinnhubClient) GetCompanyNews(symbol string, from, to time.Time) ([]*NewsArticle, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}

	var cached []*NewsArticle
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	var result []*NewsArticle
	err := WithRetry(fc.retry, func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/company-news")
		if err != nil {
			return fmt.Errorf("fetch news for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
		}

		var items []FinnhubNews
		if err := json.Unmarshal(resp.Body(), &items); err != nil {
			return fmt.Errorf("parse news response: %w", err)
		}

		result = make([]*NewsArticle, 0, len(items))
		for _, news := range items {
			result = append(result, &NewsArticle{
				Title:       news.Headline,
				Content:     news.Summary,
				URL:         news.URL,
				Source:      news.Source,
				PublishedAt: time.Unix(news.DateTime, 0),
				Metadata: map[string]string{
					"category": news.Category,
					"related":  news.Related,
					"id":       strconv.FormatInt(news.ID, 10),
				},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "company_news", cacheKey, result)
	return result, nil
}

// GetInsiderTransactions gets insider trading filings for a company.
func (fc *FinnhubClient) GetInsiderTransactions(symbol string, from, to time.Time) ([]*InsiderTransaction, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}

	var cached []*InsiderTransaction
	if fc.cache.Get("finnhub", "insider_transactions", cacheKey, &cached) {
		return cached, nil
	}

	var result []*InsiderTransaction
	err := WithRetry(fc.retry, func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/stock/insider-transactions")
		if err != nil {
			return fmt.Errorf("fetch insider transactions for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
		}

		var apiResponse struct {
			Data []*InsiderTransaction `json:"data"`
		}
		if err := json.Unmarshal(resp.Body(), &apiResponse); err != nil {
			return fmt.Errorf("parse insider transactions response: %w", err)
		}
		result = apiResponse.Data
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "insider_transactions", cacheKey, result)
	return result, nil
}

// GetInsiderSentiment gets monthly insider sentiment for a company.
func (fc *FinnhubClient) GetInsiderSentiment(symbol string, from, to time.Time) ([]*InsiderSentiment, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}

	var cached []*InsiderSentiment
	if fc.cache.Get("finnhub", "insider_sentiment", cacheKey, &cached) {
		return cached, nil
	}

	var result []*InsiderSentiment
	err := WithRetry(fc.retry, func() error {
		resp, err := fc.client.R().
			SetQueryParams(map[string]string{
				"symbol": symbol,
				"from":   from.Format("2006-01-02"),
				"to":     to.Format("2006-01-02"),
				"token":  fc.apiKey,
			}).
			Get("/stock/insider-sentiment")
		if err != nil {
			return fmt.Errorf("fetch insider sentiment for %s: %w", symbol, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("finnhub API error %d: %s", resp.StatusCode(), resp.String())
		}

		var apiResponse struct {
			Data []*InsiderSentiment `json:"data"`
		}
		if err := json.Unmarshal(resp.Body(), &apiResponse); err != nil {
			return fmt.Errorf("parse insider sentiment response: %w", err)
		}
		result = apiResponse.Data
		return nil
	})
	if err != nil {
		return nil, err
	}

	fc.cache.Set("finnhub", "insider_sentiment", cacheKey, result)
	return result, nil
}

// DatedRecords is one day's worth of entries from an offline snapshot,
// still in raw JSON form.
type DatedRecords struct {
	Date string
	Raw  json.RawMessage
}

// GetDataInRange reads an offline snapshot file
// (finnhub_data/<dataType>/<symbol>_data_formatted.json, a JSON object
// keyed by date) and returns the days with start <= date <= end and at
// least one entry, in chronological order.
func (fc *FinnhubClient) GetDataInRange(symbol, dataType, startDate, endDate string) ([]DatedRecords, error) {
	path := filepath.Join(fc.dataDir, "finnhub_data", dataType,
		fmt.Sprintf("%s_data_formatted.json", symbol))

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("offline %s snapshot for %s not found: %w", dataType, symbol, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("read offline snapshot: %w", err)
	}

	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byDate); err != nil {
		return nil, fmt.Errorf("parse offline snapshot %s: %w", path, err)
	}

	dates := make([]string, 0, len(byDate))
	for date, entries := range byDate {
		if date < startDate || date > endDate {
			continue
		}
		var probe []json.RawMessage
		if err := json.Unmarshal(entries, &probe); err != nil || len(probe) == 0 {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)

	result := make([]DatedRecords, 0, len(dates))
	for _, date := range dates {
		result = append(result, DatedRecords{Date: date, Raw: byDate[date]})
	}
	return result, nil
}

// DatedNews groups offline news articles by snapshot date.
type DatedNews struct {
	Date  string
	Items []FinnhubNews
}

// OfflineCompanyNews reads company news from the offline snapshot.
func (fc *FinnhubClient) OfflineCompanyNews(symbol, startDate, endDate string) ([]DatedNews, error) {
	days, err := fc.GetDataInRange(symbol, OfflineNewsData, startDate, endDate)
	if err != nil {
		return nil, err
	}

	result := make([]DatedNews, 0, len(days))
	for _, day := range days {
		var items []FinnhubNews
		if err := json.Unmarshal(day.Raw, &items); err != nil {
			return nil, fmt.Errorf("parse offline news for %s: %w", day.Date, err)
		}
		result = append(result, DatedNews{Date: day.Date, Items: items})
	}
	return result, nil
}

// OfflineInsiderSentiment reads insider sentiment from the offline
// snapshot, deduplicating repeated entries across days.
func (fc *FinnhubClient) OfflineInsiderSentiment(symbol, startDate, endDate string) ([]*InsiderSentiment, error) {
	days, err := fc.GetDataInRange(symbol, OfflineInsiderSenti, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return decodeDeduped[InsiderSentiment](days)
}

// OfflineInsiderTransactions reads insider transactions from the offline
// snapshot, deduplicating repeated entries across days.
func (fc *FinnhubClient) OfflineInsiderTransactions(symbol, startDate, endDate string) ([]*InsiderTransaction, error) {
	days, err := fc.GetDataInRange(symbol, OfflineInsiderTrans, startDate, endDate)
	if err != nil {
		return nil, err
	}
	return decodeDeduped[InsiderTransaction](days)
}

// decodeDeduped flattens dated records into typed entries, skipping
// entries whose raw bytes were already seen. Snapshot files repeat the
// same filing under several dates.
func decodeDeduped[T any](days []DatedRecords) ([]*T, error) {
	var result []*T
	seen := make(map[string]bool)
	for _, day := range days {
		var raws []json.RawMessage
		if err := json.Unmarshal(day.Raw, &raws); err != nil {
			return nil, fmt.Errorf("parse offline entries for %s: %w", day.Date, err)
		}
		for _, raw := range raws {
			key := string(raw)
			if seen[key] {
				continue
			}
			seen[key] = true

			entry := new(T)
			if err := json.Unmarshal(raw, entry); err != nil {
				return nil, fmt.Errorf("parse offline entry for %s: %w", day.Date, err)
			}
			result = append(result, entry)
		}
	}
	return result, nil
}
