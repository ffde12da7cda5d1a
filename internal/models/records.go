package models

import "time"

// Run statuses recorded alongside each propagation.
const (
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusError   = "error"
)

// RunRecord identifies one propagation of the pipeline.
type RunRecord struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	TradeDate string    `json:"trade_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportRecord is one named report section produced during a run.
type ReportRecord struct {
	RunID   string `json:"run_id"`
	Section string `json:"section"`
	Content string `json:"content"`
	Seq     int    `json:"seq"`
}
