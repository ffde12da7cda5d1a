package dataflows

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Statement kinds served by the SimFin bulk download.
const (
	StatementBalanceSheet = "balance_sheet"
	StatementCashFlow     = "cash_flow"
	StatementIncome       = "income_statement"
)

// simfinFiles maps a statement kind to its directory and file-name stem
// inside simfin_data_all.
var simfinFiles = map[string]struct {
	dir  string
	stem string
}{
	StatementBalanceSheet: {dir: "balance_sheet", stem: "balance"},
	StatementCashFlow:     {dir: "cash_flow", stem: "cashflow"},
	StatementIncome:       {dir: "income_statements", stem: "income"},
}

// StatementField is one column of a financial statement row.
type StatementField struct {
	Name  string
	Value string
}

// StatementRow is the most recent statement published for a ticker, with
// columns in file order.
type StatementRow struct {
	Ticker      string
	PublishDate string
	Fields      []StatementField
}

// SimFinClient reads the bundled SimFin statement CSVs under
// DataDir/fundamental_data/simfin_data_all. Files are semicolon separated
// with one row per (ticker, fiscal period).
type SimFinClient struct {
	dataDir string
}

func NewSimFinClient(cfg *Config) *SimFinClient {
	return &SimFinClient{dataDir: cfg.DataDir}
}

func (sc *SimFinClient) statementPath(kind, freq string) (string, error) {
	loc, ok := simfinFiles[kind]
	if !ok {
		return "", fmt.Errorf("unknown statement kind %q", kind)
	}
	if freq != "annual" && freq != "quarterly" {
		return "", fmt.Errorf("statement frequency must be annual or quarterly, got %q", freq)
	}
	return filepath.Join(sc.dataDir, "fundamental_data", "simfin_data_all",
		loc.dir, "companies", "us", fmt.Sprintf("us-%s-%s.csv", loc.stem, freq)), nil
}

// LatestStatement returns the most recent statement for a ticker published
// on or before currDate, or nil when none has been published yet.
func (sc *SimFinClient) LatestStatement(kind, ticker, freq, currDate string) (*StatementRow, error) {
	path, err := sc.statementPath(kind, freq)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("statement data file not found at %s: %w", path, ErrDataUnavailable)
		}
		return nil, fmt.Errorf("open statement data: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read statement csv header: %w", err)
	}

	tickerIdx, publishIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Ticker":
			tickerIdx = i
		case "Publish Date":
			publishIdx = i
		}
	}
	if tickerIdx < 0 || publishIdx < 0 {
		return nil, fmt.Errorf("statement csv %s missing Ticker or Publish Date column", path)
	}

	var best []string
	bestDate := ""
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read statement csv row: %w", err)
		}
		if record[tickerIdx] != ticker {
			continue
		}

		publishDate := normalizeStatementDate(record[publishIdx])
		if publishDate > currDate {
			continue
		}
		if publishDate > bestDate {
			bestDate = publishDate
			best = record
		}
	}
	if best == nil {
		return nil, nil
	}

	row := &StatementRow{Ticker: ticker, PublishDate: bestDate}
	for i, name := range header {
		name = strings.TrimSpace(name)
		// Internal SimFin identifiers carry no analytical signal.
		if name == "SimFinId" {
			continue
		}
		value := best[i]
		switch name {
		case "Report Date", "Publish Date":
			value = normalizeStatementDate(value)
		}
		row.Fields = append(row.Fields, StatementField{Name: name, Value: value})
	}
	return row, nil
}

// normalizeStatementDate strips any time component, keeping YYYY-MM-DD.
func normalizeStatementDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 10 {
		value = value[:10]
	}
	return value
}

// FormatStatement renders a statement row as aligned name/value lines.
func FormatStatement(row *StatementRow) string {
	width := 0
	for _, field := range row.Fields {
		if len(field.Name) > width {
			width = len(field.Name)
		}
	}

	var sb strings.Builder
	for _, field := range row.Fields {
		value := field.Value
		if value == "" {
			value = "NaN"
		}
		fmt.Fprintf(&sb, "%-*s %s\n", width+4, field.Name, value)
	}
	return sb.String()
}
