package dataflows

import (
	"time"

	"github.com/lilong555/tradingagent/config"
	"github.com/shopspring/decimal"
)

// Config is an alias for the main application config
type Config = config.Config

// MarketData represents one daily stock price bar.
type MarketData struct {
	Symbol   string          `json:"symbol"`
	Date     time.Time       `json:"date"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	AdjClose decimal.Decimal `json:"adj_close"`
	Volume   int64           `json:"volume"`
}

// NewsArticle represents a news article from any source.
type NewsArticle struct {
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt time.Time         `json:"published_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// RedditPost represents a Reddit submission.
type RedditPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	Subreddit string    `json:"subreddit"`
	Author    string    `json:"author"`
	Score     int       `json:"score"`
	Upvotes   int       `json:"upvotes"`
	Comments  int       `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	PostedAt  string    `json:"posted_date"`
}

// InsiderTransaction represents one insider trading filing row.
type InsiderTransaction struct {
	Name             string          `json:"name"`
	Share            int64           `json:"share"`
	Change           int64           `json:"change"`
	FilingDate       string          `json:"filingDate"`
	TransactionDate  string          `json:"transactionDate"`
	TransactionCode  string          `json:"transactionCode"`
	TransactionPrice decimal.Decimal `json:"transactionPrice"`
}

// InsiderSentiment is Finnhub's monthly aggregate of insider activity.
type InsiderSentiment struct {
	Symbol string  `json:"symbol"`
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Change int64   `json:"change"`
	MSPR   float64 `json:"mspr"`
}
