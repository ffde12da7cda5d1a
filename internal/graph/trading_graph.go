package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/processing"
	"github.com/lilong555/tradingagent/internal/reflection"
	"github.com/lilong555/tradingagent/internal/storage"
	"github.com/lilong555/tradingagent/internal/utils"
)

// reportSections maps report names to their state fields, in the order the
// pipeline produces them.
var reportSections = []struct {
	name string
	get  func(s *models.TradingState) string
}{
	{"market_report", func(s *models.TradingState) string { return s.MarketReport }},
	{"sentiment_report", func(s *models.TradingState) string { return s.SentimentReport }},
	{"news_report", func(s *models.TradingState) string { return s.NewsReport }},
	{"fundamentals_report", func(s *models.TradingState) string { return s.FundamentalsReport }},
	{"investment_plan", func(s *models.TradingState) string { return s.InvestmentPlan }},
	{"trader_investment_plan", func(s *models.TradingState) string { return s.TraderInvestmentPlan }},
	{"final_trade_decision", func(s *models.TradingState) string { return s.FinalTradeDecision }},
}

// TradingAgentsGraph is the facade over one compiled pipeline: it runs
// propagations, persists their artifacts, and feeds realized returns back
// into the memory banks.
type TradingAgentsGraph struct {
	cfg          *config.Config
	deps         *agents.Deps
	orchestrator compose.Runnable[*models.TradingState, *models.TradingState]
	reflector    *reflection.Reflector
	store        *storage.Store
	selected     []string
	debug        bool

	curState  *models.TradingState
	logStates map[string]map[string]any
}

// NewTradingAgentsGraph builds models, toolkit, memory banks and the
// compiled orchestrator. selectedAnalysts may be nil for the full chain.
func NewTradingAgentsGraph(ctx context.Context, selectedAnalysts []string, debug bool, cfg *config.Config) (*TradingAgentsGraph, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chatModels, err := agents.NewModels(ctx, cfg)
	if err != nil {
		return nil, err
	}
	banks, err := memory.OpenBanks(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := &agents.Deps{
		Cfg:     cfg,
		Models:  chatModels,
		Toolkit: dataflows.NewToolkit(cfg),
		Banks:   banks,
	}
	orchestrator, err := NewTradingOrchestrator(ctx, deps)
	if err != nil {
		banks.Close()
		return nil, err
	}

	g := &TradingAgentsGraph{
		cfg:          cfg,
		deps:         deps,
		orchestrator: orchestrator,
		reflector:    reflection.NewReflector(cfg, chatModels.Quick, banks),
		selected:     selectedAnalysts,
		debug:        debug,
		logStates:    make(map[string]map[string]any),
	}

	store, err := storage.NewStore(filepath.Join(cfg.DataDir, "runs.db"))
	if err != nil {
		// Persistence is best-effort; the run itself must not depend on it.
		logger.Warn().Err(err).Msg("run store unavailable, continuing without persistence")
	} else {
		g.store = store
	}
	return g, nil
}

// Propagate runs the pipeline for one symbol and trade date and returns the
// final state plus the distilled decision.
func (g *TradingAgentsGraph) Propagate(ctx context.Context, symbol, date string) (*models.TradingState, *models.TradingDecision, error) {
	parsedDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid trade date %q, expected YYYY-MM-DD", date)
	}

	var recorder *storage.Recorder
	if g.store != nil {
		recorder, err = storage.NewRecorder(ctx, g.store, symbol, date)
		if err != nil {
			logger.Warn().Err(err).Msg("run recorder unavailable")
		}
	}

	state := models.NewTradingState(symbol, parsedDate, g.selected, g.cfg)
	logger.Info().Str("symbol", symbol).Str("date", date).Msg("propagation started")

	var opts []compose.Option
	if g.debug {
		opts = append(opts, compose.WithCallbacks(NewLoggerCallback()))
	}

	final, err := g.orchestrator.Invoke(ctx, state, opts...)
	if err != nil {
		if recorder != nil {
			recorder.Finish(err)
		}
		return nil, nil, fmt.Errorf("propagation for %s on %s: %w", symbol, date, err)
	}

	decision := processing.ProcessSignal(final)
	final.Decision = decision
	g.curState = final
	g.logStates[date] = stateLog(final)

	if err := g.logState(final); err != nil {
		logger.Warn().Err(err).Msg("state log write failed")
	}
	if recorder != nil {
		for _, section := range reportSections {
			recorder.RecordReport(section.name, section.get(final))
		}
		recorder.RecordDecision(decision)
		recorder.Finish(nil)
	}

	logger.Info().Str("symbol", symbol).Str("action", decision.Action).Msg("propagation finished")
	return final, decision, nil
}

// ReflectAndRemember reviews the last propagation against realized returns
// and stores the lessons in the role memory banks.
func (g *TradingAgentsGraph) ReflectAndRemember(ctx context.Context, returns float64) error {
	if g.curState == nil {
		return fmt.Errorf("no finished propagation to reflect on")
	}
	return g.reflector.ReflectAndRemember(ctx, g.curState, returns)
}

// ProcessSignal extracts the trade action from arbitrary decision text.
func (g *TradingAgentsGraph) ProcessSignal(text string) string {
	return processing.ExtractSignal(text)
}

// CurrentState returns the final state of the last propagation, or nil.
func (g *TradingAgentsGraph) CurrentState() *models.TradingState {
	return g.curState
}

// Close releases the memory banks and the run store.
func (g *TradingAgentsGraph) Close() {
	g.deps.Banks.Close()
	if g.store != nil {
		_ = g.store.Close()
	}
}

// logState writes the accumulated full-state log for the symbol plus one
// markdown file per report section.
func (g *TradingAgentsGraph) logState(state *models.TradingState) error {
	logDir := filepath.Join(g.cfg.ResultsDir, state.CompanyOfInterest, "TradingAgentsStrategy_logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(g.logStates, "", "  ")
	if err != nil {
		return err
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("full_states_log_%s.json", state.TradeDate))
	if err := os.WriteFile(logFile, data, 0o644); err != nil {
		return err
	}

	reportDir := filepath.Join(g.cfg.ResultsDir, state.CompanyOfInterest, state.TradeDate, "reports")
	for _, section := range reportSections {
		content := section.get(state)
		if content == "" {
			continue
		}
		if err := utils.WriteMarkdown(reportDir, section.name+".md", content); err != nil {
			return err
		}
	}
	return nil
}

// stateLog is the JSON shape of one propagation in the full-states log.
func stateLog(s *models.TradingState) map[string]any {
	return map[string]any{
		"company_of_interest":     s.CompanyOfInterest,
		"trade_date":              s.TradeDate,
		"market_report":           s.MarketReport,
		"sentiment_report":        s.SentimentReport,
		"news_report":             s.NewsReport,
		"fundamentals_report":     s.FundamentalsReport,
		"investment_debate_state": s.InvestmentDebateState,
		"investment_plan":         s.InvestmentPlan,
		"trader_investment_plan":  s.TraderInvestmentPlan,
		"risk_debate_state":       s.RiskDebateState,
		"final_trade_decision":    s.FinalTradeDecision,
	}
}
