package models

// RedditNewsInput requests global (macro/market) news threads from reddit
// dumps.
type RedditNewsInput struct {
	CurrDate string `json:"curr_date"`
}

type RedditNewsOutput struct {
	Result string `json:"result"`
}

// RedditStockInfoInput requests company discussion threads from the offline
// dumps around CurrDate.
type RedditStockInfoInput struct {
	Ticker   string `json:"ticker"`
	CurrDate string `json:"curr_date"`
}

type RedditStockInfoOutput struct {
	Result string `json:"result"`
}

// RedditStockOnlineInput requests recent company posts from the live
// public API.
type RedditStockOnlineInput struct {
	Ticker       string `json:"ticker"`
	LookBackDays int    `json:"look_back_days"`
}

type RedditStockOnlineOutput struct {
	Result string `json:"result"`
}

// StockNewsSearchInput requests model-backed web search for social media
// discussion of a ticker.
type StockNewsSearchInput struct {
	Ticker   string `json:"ticker"`
	CurrDate string `json:"curr_date"`
}

type StockNewsSearchOutput struct {
	Result string `json:"result"`
}
