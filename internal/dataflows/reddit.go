package dataflows

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Offline reddit snapshot categories under DataDir/reddit_data.
const (
	RedditGlobalNews  = "global_news"
	RedditCompanyNews = "company_news"
)

// Subreddits searched by the online stock lookup.
var stockSubreddits = []string{"wallstreetbets", "stocks", "investing", "StockMarket"}

// tickerToCompany maps tickers to the company names used when searching
// post titles and bodies. Multi-name entries are joined with " OR ".
var tickerToCompany = map[string]string{
	"AAPL": "Apple",
	"MSFT": "Microsoft",
	"GOOGL": "Google",
	"AMZN": "Amazon",
	"TSLA": "Tesla",
	"NVDA": "Nvidia",
	"TSM":  "Taiwan Semiconductor Manufacturing Company OR TSMC",
	"JPM":  "JPMorgan Chase OR JP Morgan",
	"JNJ":  "Johnson & Johnson OR JNJ",
	"V":    "Visa",
	"WMT":  "Walmart",
	"META": "Meta OR Facebook",
	"AMD":  "AMD",
	"INTC": "Intel",
	"QCOM": "Qualcomm",
	"BABA": "Alibaba",
	"ADBE": "Adobe",
	"NFLX": "Netflix",
	"CRM":  "Salesforce",
	"PYPL": "PayPal",
	"PLTR": "Palantir",
	"MU":   "Micron",
	"SQ":   "Block OR Square",
	"ZM":   "Zoom",
	"CSCO": "Cisco",
	"SHOP": "Shopify",
	"ORCL": "Oracle",
	"SPOT": "Spotify",
	"AVGO": "Broadcom",
	"ASML": "ASML",
	"TWLO": "Twilio",
	"SNAP": "Snap Inc.",
	"TEAM": "Atlassian",
	"UBER": "Uber",
	"ROKU": "Roku",
	"PINS": "Pinterest",
}

// RedditClient reads Reddit posts, online via the public JSON endpoints or
// offline from bundled jsonl dumps under DataDir/reddit_data.
type RedditClient struct {
	client  *resty.Client
	cache   *CacheManager
	retry   RetryPolicy
	dataDir string
}

func NewRedditClient(cfg *Config) *RedditClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "reddit")

	userAgent := cfg.RedditUserAgent
	if userAgent == "" {
		userAgent = "tradingagent/1.0"
	}

	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", userAgent)

	return &RedditClient{
		client:  client,
		cache:   NewCacheManager(cacheDir, 1*time.Hour, cfg.CacheEnabled),
		retry:   PolicyFromConfig(cfg),
		dataDir: cfg.DataDir,
	}
}

// redditListing is the public JSON endpoint response structure.
type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string        `json:"after"`
		Children []redditChild `json:"children"`
	} `json:"data"`
}

type redditChild struct {
	Kind string         `json:"kind"`
	Data redditPostData `json:"data"`
}

type redditPostData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

// companySearchTerms returns the terms matched against post text for a
// ticker: the known company name(s) plus the ticker itself.
func companySearchTerms(ticker string) []string {
	var terms []string
	if name, ok := tickerToCompany[ticker]; ok {
		if strings.Contains(name, " OR ") {
			terms = strings.Split(name, " OR ")
		} else {
			terms = []string{name}
		}
	}
	return append(terms, ticker)
}

// FetchPostsOnline searches the stock subreddits for recent posts about a
// ticker, newest and highest-voted first.
func (rc *RedditClient) FetchPostsOnline(ticker string, lookBackDays, maxPosts int) ([]*RedditPost, error) {
	if err := ValidateSymbol(ticker); err != nil {
		return nil, err
	}
	ticker = NormalizeSymbol(ticker)
	if maxPosts <= 0 {
		maxPosts = 20
	}

	cacheKey := fmt.Sprintf("%s_%d_%d", ticker, lookBackDays, maxPosts)
	var cached []*RedditPost
	if rc.cache.Get("reddit", "stock_posts", cacheKey, &cached) {
		return cached, nil
	}

	query := strings.Join(dedupeStrings(companySearchTerms(ticker)), " OR ")
	cutoff := time.Now().UTC().AddDate(0, 0, -lookBackDays)

	var allPosts []*RedditPost
	for _, subreddit := range stockSubreddits {
		posts, err := rc.searchSubreddit(subreddit, query)
		if err != nil {
			// A single subreddit failing should not sink the whole lookup.
			continue
		}
		for _, post := range posts {
			if post.CreatedAt.Before(cutoff) {
				continue
			}
			allPosts = append(allPosts, post)
		}
	}

	sort.Slice(allPosts, func(i, j int) bool {
		if allPosts[i].PostedAt != allPosts[j].PostedAt {
			return allPosts[i].PostedAt > allPosts[j].PostedAt
		}
		return allPosts[i].Upvotes > allPosts[j].Upvotes
	})
	if len(allPosts) > maxPosts {
		allPosts = allPosts[:maxPosts]
	}

	rc.cache.Set("reddit", "stock_posts", cacheKey, allPosts)
	return allPosts, nil
}

// searchSubreddit queries one subreddit's search endpoint, newest first.
func (rc *RedditClient) searchSubreddit(subreddit, query string) ([]*RedditPost, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("sort", "new")
	values.Set("limit", "50")
	values.Set("restrict_sr", "on")

	searchURL := fmt.Sprintf("https://www.reddit.com/r/%s/search.json?%s", subreddit, values.Encode())

	var listing redditListing
	err := WithRetry(rc.retry, func() error {
		resp, err := rc.client.R().Get(searchURL)
		if err != nil {
			return fmt.Errorf("search r/%s: %w", subreddit, err)
		}
		if resp.StatusCode() != 200 {
			return fmt.Errorf("reddit HTTP error %d for r/%s", resp.StatusCode(), subreddit)
		}
		if err := json.Unmarshal(resp.Body(), &listing); err != nil {
			return fmt.Errorf("parse reddit response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	posts := make([]*RedditPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		data := child.Data
		created := time.Unix(int64(data.CreatedUTC), 0).UTC()
		posts = append(posts, &RedditPost{
			ID:        data.ID,
			Title:     data.Title,
			Content:   data.Selftext,
			URL:       data.URL,
			Subreddit: data.Subreddit,
			Author:    data.Author,
			Score:     data.Score,
			Upvotes:   data.Ups,
			Comments:  data.NumComments,
			CreatedAt: created,
			PostedAt:  created.Format("2006-01-02"),
		})
	}
	return posts, nil
}

// redditDumpLine is one line of an offline jsonl dump.
type redditDumpLine struct {
	Title      string  `json:"title"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
}

// FetchTopFromCategory reads one day's top posts from the offline dumps of
// a category (one jsonl file per subreddit). maxLimit is split evenly
// across the category's files; company categories additionally require a
// ticker mention in the title or body.
func (rc *RedditClient) FetchTopFromCategory(category, date string, maxLimit int, ticker string) ([]*RedditPost, error) {
	categoryDir := filepath.Join(rc.dataDir, "reddit_data", category)

	entries, err := os.ReadDir(categoryDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("offline reddit dumps for %s not found: %w", category, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("read reddit category dir: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}
	if maxLimit < len(entries) {
		return nil, fmt.Errorf("max limit %d is less than the %d files in category %s, no posts can be fetched", maxLimit, len(entries), category)
	}
	limitPerSubreddit := maxLimit / len(entries)

	var searchPatterns []*regexp.Regexp
	if strings.Contains(category, "company") && ticker != "" {
		for _, term := range companySearchTerms(ticker) {
			searchPatterns = append(searchPatterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(term)))
		}
	}

	var allPosts []*RedditPost
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}

		subreddit := strings.TrimSuffix(entry.Name(), ".jsonl")
		posts, err := rc.readDumpFile(filepath.Join(categoryDir, entry.Name()), subreddit, date, searchPatterns)
		if err != nil {
			return nil, err
		}

		sort.SliceStable(posts, func(i, j int) bool { return posts[i].Upvotes > posts[j].Upvotes })
		if len(posts) > limitPerSubreddit {
			posts = posts[:limitPerSubreddit]
		}
		allPosts = append(allPosts, posts...)
	}

	return allPosts, nil
}

// readDumpFile scans one jsonl dump for posts from a single day.
func (rc *RedditClient) readDumpFile(path, subreddit, date string, patterns []*regexp.Regexp) ([]*RedditPost, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reddit dump %s: %w", path, err)
	}
	defer file.Close()

	var posts []*RedditPost
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var dump redditDumpLine
		if err := json.Unmarshal([]byte(line), &dump); err != nil {
			return nil, fmt.Errorf("parse reddit dump line in %s: %w", path, err)
		}

		created := time.Unix(int64(dump.CreatedUTC), 0).UTC()
		postDate := created.Format("2006-01-02")
		if postDate != date {
			continue
		}

		if len(patterns) > 0 && !matchesAny(patterns, dump.Title, dump.Selftext) {
			continue
		}

		posts = append(posts, &RedditPost{
			Title:     dump.Title,
			Content:   dump.Selftext,
			URL:       dump.URL,
			Subreddit: subreddit,
			Upvotes:   dump.Ups,
			CreatedAt: created,
			PostedAt:  postDate,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan reddit dump %s: %w", path, err)
	}

	return posts, nil
}

func matchesAny(patterns []*regexp.Regexp, texts ...string) bool {
	for _, pattern := range patterns {
		for _, text := range texts {
			if pattern.MatchString(text) {
				return true
			}
		}
	}
	return false
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var result []string
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
