package models

// TradingDecision is the structured outcome distilled from the final trade
// decision text.
type TradingDecision struct {
	Symbol       string  `json:"symbol"`
	Date         string  `json:"date"`
	Action       string  `json:"action"`
	Confidence   float64 `json:"confidence"`
	Reasoning    string  `json:"reasoning"`
	EntryPrice   float64 `json:"entry_price,omitempty"`
	StopLoss     float64 `json:"stop_loss,omitempty"`
	TakeProfit   float64 `json:"take_profit,omitempty"`
	PositionSize float64 `json:"position_size,omitempty"`
}
