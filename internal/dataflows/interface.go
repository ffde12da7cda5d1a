package dataflows

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lilong555/tradingagent/internal/logging"
)

// Toolkit bundles every data source behind report-producing methods. The
// returned strings are what the analyst agents read, so wording and
// layout stay stable.
type Toolkit struct {
	cfg     *Config
	yahoo   *YahooFinanceClient
	finnhub *FinnhubClient
	reddit  *RedditClient
	google  *GoogleNewsClient
	simfin  *SimFinClient
	search  *WebSearchClient
	logger  zerolog.Logger
}

func NewToolkit(cfg *Config) *Toolkit {
	return &Toolkit{
		cfg:     cfg,
		yahoo:   NewYahooFinanceClient(cfg),
		finnhub: NewFinnhubClient(cfg),
		reddit:  NewRedditClient(cfg),
		google:  NewGoogleNewsClient(cfg),
		simfin:  NewSimFinClient(cfg),
		search:  NewWebSearchClient(cfg),
		logger:  logging.NewLogger("dataflows"),
	}
}

func (tk *Toolkit) Config() *Config {
	return tk.cfg
}

// OnlineTools reports whether live APIs should be preferred over the
// bundled offline snapshots.
func (tk *Toolkit) OnlineTools() bool {
	return tk.cfg.OnlineTools
}

// lookBack returns (currDate - days, currDate) as formatted strings.
func lookBack(currDate string, days int) (string, string, error) {
	curr, err := time.Parse("2006-01-02", currDate)
	if err != nil {
		return "", "", fmt.Errorf("parse date %q: %w", currDate, err)
	}
	before := curr.AddDate(0, 0, -days)
	return before.Format("2006-01-02"), curr.Format("2006-01-02"), nil
}

// MarketDataReport returns daily OHLCV rows for [startDate, endDate] as a
// CSV block, online via Yahoo Finance or offline from the bundled files.
func (tk *Toolkit) MarketDataReport(symbol, startDate, endDate string) (string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return "", fmt.Errorf("parse end date %q: %w", endDate, err)
	}

	tk.logger.Debug().Str("symbol", symbol).Str("start", startDate).Str("end", endDate).
		Bool("online", tk.cfg.OnlineTools).Msg("fetching market data")

	var rows []*MarketData
	if tk.cfg.OnlineTools {
		// The chart endpoint treats the end bound as exclusive.
		rows, err = tk.yahoo.GetHistoricalData(symbol, start, end.AddDate(0, 0, 1))
	} else {
		rows, err = tk.yahoo.GetOfflineData(symbol, start, end)
	}
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			return fmt.Sprintf("Error: Offline data file not found for ticker %s. Please ensure the necessary data is downloaded.", symbol), nil
		}
		return "", err
	}
	if len(rows) == 0 {
		return fmt.Sprintf("No data found for symbol '%s' between %s and %s", symbol, startDate, endDate), nil
	}

	return FormatPriceReport(symbol, start, end, rows), nil
}

// FinnhubNewsReport renders company news from the offline snapshot for the
// lookBackDays window ending at currDate. Returns "" when the window holds
// no articles.
func (tk *Toolkit) FinnhubNewsReport(ticker, currDate string, lookBackDays int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	days, err := tk.finnhub.OfflineCompanyNews(ticker, before, curr)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s News, from %s to %s:\n", ticker, before, curr)
	for _, day := range days {
		for _, entry := range day.Items {
			fmt.Fprintf(&sb, "### %s (%s)\n%s\n\n", entry.Headline, day.Date, entry.Summary)
		}
	}
	return sb.String(), nil
}

// FinnhubNewsOnlineReport renders company news fetched live from Finnhub.
func (tk *Toolkit) FinnhubNewsOnlineReport(ticker, currDate string, lookBackDays int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	from, _ := time.Parse("2006-01-02", before)
	to, _ := time.Parse("2006-01-02", curr)
	articles, err := tk.finnhub.GetCompanyNews(ticker, from, to)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return fmt.Sprintf("No online news found for %s from %s to %s.", ticker, before, curr), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Online News, from %s to %s:\n", ticker, before, curr)
	for _, article := range articles {
		fmt.Fprintf(&sb, "### %s (%s)\n%s\n\n",
			article.Title, article.PublishedAt.Format("2006-01-02"), article.Content)
	}
	return sb.String(), nil
}

// InsiderSentimentReport renders monthly insider sentiment from the
// offline snapshot for the window ending at currDate.
func (tk *Toolkit) InsiderSentimentReport(ticker, currDate string, lookBackDays int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	entries, err := tk.finnhub.OfflineInsiderSentiment(ticker, before, curr)
	if err != nil && !errors.Is(err, ErrDataUnavailable) {
		return "", err
	}
	if len(entries) == 0 {
		return "Offline Finnhub insider sentiment data not found. This feature requires a local data cache.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Insider Sentiment Data for %s to %s:\n", ticker, before, curr)
	for _, entry := range entries {
		fmt.Fprintf(&sb, "### %d-%d:\nChange: %d\nMonthly Share Purchase Ratio: %v\n\n",
			entry.Year, entry.Month, entry.Change, entry.MSPR)
	}
	sb.WriteString("The change field refers to the net buying/selling from all insiders' transactions. The mspr field refers to monthly share purchase ratio.")
	return sb.String(), nil
}

// InsiderTransactionsReport renders insider filings from the offline
// snapshot for the window ending at currDate.
func (tk *Toolkit) InsiderTransactionsReport(ticker, currDate string, lookBackDays int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	entries, err := tk.finnhub.OfflineInsiderTransactions(ticker, before, curr)
	if err != nil && !errors.Is(err, ErrDataUnavailable) {
		return "", err
	}
	if len(entries) == 0 {
		return "Offline Finnhub insider transaction data not found. This feature requires a local data cache.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s insider transactions from %s to %s:\n", ticker, before, curr)
	for _, entry := range entries {
		fmt.Fprintf(&sb, "### Filing Date: %s, %s:\nChange:%d\nShares: %d\nTransaction Price: %s\nTransaction Code: %s\n\n",
			entry.FilingDate, entry.Name, entry.Change, entry.Share,
			entry.TransactionPrice.String(), entry.TransactionCode)
	}
	sb.WriteString("The change field reflects the variation in share count—here a negative number indicates a reduction in holdings—while share specifies the total number of shares involved. The transactionPrice denotes the per-share price at which the trade was executed, and transactionDate marks when the transaction occurred. The name field identifies the insider making the trade, and transactionCode (e.g., S for sale) clarifies the nature of the transaction. FilingDate records when the transaction was officially reported, and the unique id links to the specific SEC filing, as indicated by the source. Additionally, the symbol ties the transaction to a particular company, isDerivative flags whether the trade involves derivative securities, and currency notes the currency context of the transaction.")
	return sb.String(), nil
}

// GoogleNewsReport renders Google News results for the window ending at
// currDate. Returns "" when nothing matched.
func (tk *Toolkit) GoogleNewsReport(query, currDate string, lookBackDays int) (string, error) {
	query = strings.ReplaceAll(query, " ", "+")

	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	start, _ := time.Parse("2006-01-02", before)
	end, _ := time.Parse("2006-01-02", curr)
	articles, err := tk.google.SearchNews(query, start, end)
	if err != nil {
		return "", err
	}
	if len(articles) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Google News, from %s to %s:\n\n", query, before, curr)
	for _, article := range articles {
		fmt.Fprintf(&sb, "### %s (source: %s) \n\n%s\n\n", article.Title, article.Source, article.Content)
	}
	return sb.String(), nil
}

// RedditGlobalNewsReport renders top offline Reddit world news, day by
// day, for the window ending at currDate.
func (tk *Toolkit) RedditGlobalNewsReport(currDate string, lookBackDays, maxLimitPerDay int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	posts, err := tk.collectRedditRange(RedditGlobalNews, before, curr, maxLimitPerDay, "")
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Global News Reddit, from %s to %s:\n", before, curr)
	writeRedditDigest(&sb, posts)
	return sb.String(), nil
}

// RedditCompanyNewsReport renders top offline Reddit posts mentioning a
// ticker, day by day, for the window ending at currDate.
func (tk *Toolkit) RedditCompanyNewsReport(ticker, currDate string, lookBackDays, maxLimitPerDay int) (string, error) {
	before, curr, err := lookBack(currDate, lookBackDays)
	if err != nil {
		return "", err
	}

	posts, err := tk.collectRedditRange(RedditCompanyNews, before, curr, maxLimitPerDay, ticker)
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s Offline Reddit News, from %s to %s:\n\n", ticker, before, curr)
	writeRedditDigest(&sb, posts)
	return sb.String(), nil
}

func (tk *Toolkit) collectRedditRange(category, before, curr string, maxLimitPerDay int, ticker string) ([]*RedditPost, error) {
	start, _ := time.Parse("2006-01-02", before)
	end, _ := time.Parse("2006-01-02", curr)

	var posts []*RedditPost
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dayPosts, err := tk.reddit.FetchTopFromCategory(category, day.Format("2006-01-02"), maxLimitPerDay, ticker)
		if err != nil {
			return nil, err
		}
		posts = append(posts, dayPosts...)
	}
	return posts, nil
}

func writeRedditDigest(sb *strings.Builder, posts []*RedditPost) {
	for _, post := range posts {
		if post.Content == "" {
			fmt.Fprintf(sb, "### %s\n\n", post.Title)
		} else {
			fmt.Fprintf(sb, "### %s\n\n%s\n\n", post.Title, post.Content)
		}
	}
}

// RedditStockInfoReport renders recent live Reddit posts about a ticker.
func (tk *Toolkit) RedditStockInfoReport(ticker string, lookBackDays int) (string, error) {
	posts, err := tk.reddit.FetchPostsOnline(ticker, lookBackDays, 20)
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return fmt.Sprintf("## No recent online Reddit posts found for %s in the last %d days.\n", ticker, lookBackDays), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Recent Online Reddit Posts for %s:\n\n", ticker)
	for _, post := range posts {
		content := strings.TrimSpace(post.Content)
		if content == "" || content == "[removed]" || content == "[deleted]" {
			content = "No content available."
		}
		if len(content) > 1000 {
			content = content[:1000]
		}
		fmt.Fprintf(&sb, "### r/%s: %s (Upvotes: %d)\n", post.Subreddit, post.Title, post.Upvotes)
		fmt.Fprintf(&sb, "**Posted on:** %s\n", post.PostedAt)
		fmt.Fprintf(&sb, "**Content:** %s...\n", content)
		fmt.Fprintf(&sb, "**URL:** %s\n\n", post.URL)
	}
	return sb.String(), nil
}

// statementTitles maps statement kinds to the wording used in report
// headers.
var statementTitles = map[string]string{
	StatementBalanceSheet: "balance sheet",
	StatementCashFlow:     "cash flow statement",
	StatementIncome:       "income statement",
}

var statementSuffixes = map[string]string{
	StatementBalanceSheet: "This includes metadata like reporting dates and currency, share details, and a breakdown of assets, liabilities, and equity. Assets are grouped as current (liquid items like cash and receivables) and noncurrent (long-term investments and property). Liabilities are split between short-term obligations and long-term debts, while equity reflects shareholder funds such as paid-in capital and retained earnings. Together, these components ensure that total assets equal the sum of liabilities and equity.",
	StatementCashFlow:     "This includes metadata like reporting dates and currency, share details, and a breakdown of cash movements. Operating activities show cash generated from core business operations, including net income adjustments for non-cash items and working capital changes. Investing activities cover asset acquisitions/disposals and investments. Financing activities include debt transactions, equity issuances/repurchases, and dividend payments. The net change in cash represents the overall increase or decrease in the company's cash position during the reporting period.",
	StatementIncome:       "This includes metadata like reporting dates and currency, share details, and a comprehensive breakdown of the company's financial performance. Starting with Revenue, it shows Cost of Revenue and resulting Gross Profit. Operating Expenses are detailed, including SG&A, R&D, and Depreciation. The statement then shows Operating Income, followed by non-operating items and Interest Expense, leading to Pretax Income. After accounting for Income Tax and any Extraordinary items, it concludes with Net Income, representing the company's bottom-line profit or loss for the period.",
}

// StatementReport renders the most recent statement of the given kind
// published on or before currDate.
func (tk *Toolkit) StatementReport(kind, ticker, freq, currDate string) (string, error) {
	row, err := tk.simfin.LatestStatement(kind, ticker, freq, currDate)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			path, _ := tk.simfin.statementPath(kind, freq)
			return fmt.Sprintf("Error: Offline data file not found at %s. Please ensure the necessary data is downloaded.", path), nil
		}
		return "", err
	}
	if row == nil {
		tk.logger.Info().Str("ticker", ticker).Str("kind", kind).Str("curr_date", currDate).
			Msg("no statement published before date")
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s %s for %s released on %s: \n", freq, statementTitles[kind], ticker, row.PublishDate)
	sb.WriteString(FormatStatement(row))
	sb.WriteString("\n\n")
	sb.WriteString(statementSuffixes[kind])
	return sb.String(), nil
}

// StockNewsSearch asks the web-search model for recent social media
// discussion of a ticker.
func (tk *Toolkit) StockNewsSearch(ticker, currDate string) (string, error) {
	if !tk.search.Supported() {
		return fmt.Sprintf("Error: get_stock_news_openai is only supported for OpenAI-compatible providers, but the current provider is '%s'.", tk.search.Provider()), nil
	}
	prompt := fmt.Sprintf("Can you search Social Media for %s from 7 days before %s to %s? Make sure you only get the data posted during that period.", ticker, currDate, currDate)
	return tk.search.Search(prompt)
}

// GlobalNewsSearch asks the web-search model for recent macroeconomic
// news.
func (tk *Toolkit) GlobalNewsSearch(currDate string) (string, error) {
	if !tk.search.Supported() {
		return fmt.Sprintf("Error: get_global_news_openai is only supported for OpenAI-compatible providers, but the current provider is '%s'.", tk.search.Provider()), nil
	}
	prompt := fmt.Sprintf("Can you search global or macroeconomics news from 7 days before %s to %s that would be informative for trading purposes? Make sure you only get the data posted during that period.", currDate, currDate)
	return tk.search.Search(prompt)
}

// FundamentalsSearch asks the web-search model for fundamental analysis
// of a ticker.
func (tk *Toolkit) FundamentalsSearch(ticker, currDate string) (string, error) {
	if !tk.search.Supported() {
		return fmt.Sprintf("Error: get_fundamentals_openai is only supported for OpenAI-compatible providers, but the current provider is '%s'.", tk.search.Provider()), nil
	}
	prompt := fmt.Sprintf("Can you search Fundamental for discussions on %s from the month before %s to the month of %s. Make sure you only get the data posted during that period. List as a table, with PE/PS/Cash flow/ etc", ticker, currDate, currDate)
	return tk.search.Search(prompt)
}

// PriceHistory returns raw bars for indicator computation, online or from
// the offline bundle.
func (tk *Toolkit) PriceHistory(symbol, startDate, endDate string) ([]*MarketData, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", endDate, err)
	}

	if tk.cfg.OnlineTools {
		return tk.yahoo.GetHistoricalData(symbol, start, end.AddDate(0, 0, 1))
	}
	return tk.yahoo.GetOfflineData(symbol, start, end)
}

// Longport returns a lazily created Longport client, or an error when
// credentials are missing.
func (tk *Toolkit) Longport() (*LongportClient, error) {
	return NewLongportClient(tk.cfg)
}
