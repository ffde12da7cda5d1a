package models

// FinnhubNewsInput requests company news between two dates.
type FinnhubNewsInput struct {
	Ticker    string `json:"ticker"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type FinnhubNewsOutput struct {
	Result string `json:"result"`
}

// FinnhubNewsOnlineInput requests live company news over a lookback window.
type FinnhubNewsOnlineInput struct {
	Ticker       string `json:"ticker"`
	CurrDate     string `json:"curr_date"`
	LookBackDays int    `json:"look_back_days"`
}

type FinnhubNewsOnlineOutput struct {
	Result string `json:"result"`
}

// GoogleNewsInput requests a Google News query ending at CurrDate.
type GoogleNewsInput struct {
	Query    string `json:"query"`
	CurrDate string `json:"curr_date"`
}

type GoogleNewsOutput struct {
	Result string `json:"result"`
}

// GlobalNewsSearchInput requests model-backed web search for macro news.
type GlobalNewsSearchInput struct {
	CurrDate string `json:"curr_date"`
}

type GlobalNewsSearchOutput struct {
	Result string `json:"result"`
}
