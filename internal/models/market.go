package models

// MarketData is one daily OHLCV row as handed to the model.
type MarketData struct {
	Symbol string  `json:"symbol"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// StockDataInput requests raw daily bars for indicator computation.
type StockDataInput struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// StockDataOutput carries the rows structurally; an empty Data slice means
// the range could not be retrieved.
type StockDataOutput struct {
	Symbol string        `json:"symbol"`
	Data   []*MarketData `json:"data"`
}

// YFinDataInput requests a formatted price history report.
type YFinDataInput struct {
	Symbol    string `json:"symbol"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type YFinDataOutput struct {
	Result string `json:"result"`
}

// StockIndicatorInput requests a technical indicator report over a window
// ending at CurrDate.
type StockIndicatorInput struct {
	Symbol       string `json:"symbol"`
	Indicator    string `json:"indicator"`
	CurrDate     string `json:"curr_date"`
	LookBackDays int    `json:"look_back_days"`
}

type StockIndicatorOutput struct {
	Result string `json:"result"`
}

// MarketDataInput requests recent daily bars from the Longport quote API.
type MarketDataInput struct {
	Symbol string `json:"symbol"`
	Count  int    `json:"count"`
}

// MarketDataOutput carries Longport bars; Error holds the observation text
// when the quote API is unavailable.
type MarketDataOutput struct {
	Data  []*MarketData `json:"data,omitempty"`
	Error string        `json:"error,omitempty"`
}
