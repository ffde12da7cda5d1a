// Package storage persists pipeline runs to sqlite: one row per run, the
// report sections each role produced, and the distilled trade decision.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/pkg/sqlite"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		trade_date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		section TEXT NOT NULL,
		content TEXT,
		seq INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS decisions (
		run_id TEXT PRIMARY KEY REFERENCES runs(id),
		symbol TEXT NOT NULL,
		trade_date TEXT NOT NULL,
		action TEXT NOT NULL,
		confidence REAL,
		reasoning TEXT,
		entry_price REAL,
		stop_loss REAL,
		take_profit REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_reports_run ON reports(run_id, seq);
	CREATE INDEX IF NOT EXISTS idx_runs_symbol ON runs(symbol, trade_date);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init storage schema: %w", err)
	}
	return nil
}

func (s *Store) CreateRun(ctx context.Context, run models.RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, symbol, trade_date, status) VALUES (?, ?, ?, ?)`,
		run.ID, run.Symbol, run.TradeDate, run.Status)
	if err != nil {
		return fmt.Errorf("create run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ? WHERE id = ?`, status, runID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return nil
}

func (s *Store) SaveReport(ctx context.Context, report models.ReportRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (run_id, section, content, seq) VALUES (?, ?, ?, ?)`,
		report.RunID, report.Section, report.Content, report.Seq)
	if err != nil {
		return fmt.Errorf("save report %s/%s: %w", report.RunID, report.Section, err)
	}
	return nil
}

func (s *Store) SaveDecision(ctx context.Context, runID string, d *models.TradingDecision) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO decisions
		 (run_id, symbol, trade_date, action, confidence, reasoning, entry_price, stop_loss, take_profit)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, d.Symbol, d.Date, d.Action, d.Confidence, d.Reasoning, d.EntryPrice, d.StopLoss, d.TakeProfit)
	if err != nil {
		return fmt.Errorf("save decision for run %s: %w", runID, err)
	}
	return nil
}

// Reports returns a run's report sections in the order they were recorded.
func (s *Store) Reports(ctx context.Context, runID string) ([]models.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, section, content, seq FROM reports WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load reports for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []models.ReportRecord
	for rows.Next() {
		var r models.ReportRecord
		if err := rows.Scan(&r.RunID, &r.Section, &r.Content, &r.Seq); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Decisions returns the most recent decisions for a symbol, newest first.
func (s *Store) Decisions(ctx context.Context, symbol string, limit int) ([]models.TradingDecision, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol, trade_date, action, confidence, reasoning, entry_price, stop_loss, take_profit
		 FROM decisions WHERE symbol = ? ORDER BY trade_date DESC LIMIT ?`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("load decisions for %s: %w", symbol, err)
	}
	defer rows.Close()

	var out []models.TradingDecision
	for rows.Next() {
		var d models.TradingDecision
		if err := rows.Scan(&d.Symbol, &d.Date, &d.Action, &d.Confidence, &d.Reasoning,
			&d.EntryPrice, &d.StopLoss, &d.TakeProfit); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Run returns one run row.
func (s *Store) Run(ctx context.Context, runID string) (models.RunRecord, error) {
	var run models.RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, trade_date, status, created_at FROM runs WHERE id = ?`, runID).
		Scan(&run.ID, &run.Symbol, &run.TradeDate, &run.Status, &run.CreatedAt)
	if err != nil {
		return models.RunRecord{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run, nil
}
