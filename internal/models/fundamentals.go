package models

// InsiderInput requests insider sentiment or transactions with a 30-day
// lookback from CurrDate.
type InsiderInput struct {
	Ticker   string `json:"ticker"`
	CurrDate string `json:"curr_date"`
}

type InsiderOutput struct {
	Result string `json:"result"`
}

// StatementInput requests the most recent financial statement published on
// or before CurrDate.
type StatementInput struct {
	Ticker   string `json:"ticker"`
	Freq     string `json:"freq"`
	CurrDate string `json:"curr_date"`
}

type StatementOutput struct {
	Result string `json:"result"`
}

// FundamentalsSearchInput requests model-backed web search for fundamental
// data on a ticker.
type FundamentalsSearchInput struct {
	Ticker   string `json:"ticker"`
	CurrDate string `json:"curr_date"`
}

type FundamentalsSearchOutput struct {
	Result string `json:"result"`
}
