package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/processing"
)

type constEmbedder struct{}

func (constEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// stubModel answers each role from its system prompt, so one fake serves
// the whole pipeline. The social analyst turn requests a tool first to
// exercise the react loop.
type stubModel struct {
	mu sync.Mutex

	socialCalls     int
	socialToolSeen  bool
	marketUserInput string
}

func assistant(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

func (m *stubModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sys := ""
	if len(input) > 0 && input[0].Role == schema.System {
		sys = input[0].Content
	}

	switch {
	case strings.Contains(sys, "You are a Market Analyst"):
		for _, msg := range input {
			if msg.Role == schema.User {
				m.marketUserInput = msg.Content
			}
		}
		return assistant("Technical setup is balanced with a mild bullish tilt."), nil

	case strings.Contains(sys, "Social Media Analyst"):
		m.socialCalls++
		if m.socialCalls == 1 {
			return &schema.Message{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{{
					ID:   "call-1",
					Type: "function",
					Function: schema.FunctionCall{
						Name:      "get_reddit_stock_info_offline",
						Arguments: `{"ticker":"AAPL","curr_date":"2024-06-03"}`,
					},
				}},
			}, nil
		}
		for _, msg := range input {
			if msg.Role == schema.Tool {
				m.socialToolSeen = true
			}
		}
		return assistant("Retail chatter is mildly positive."), nil

	case strings.Contains(sys, "News Analyst"):
		return assistant("No market-moving headlines this week."), nil

	case strings.Contains(sys, "Fundamentals Analyst"):
		return assistant("Balance sheet remains strong with growing services revenue."), nil

	case strings.Contains(sys, "You are a Bull Analyst"):
		return assistant("The growth story is intact and sentiment supports an entry."), nil

	case strings.Contains(sys, "You are a Bear Analyst"):
		return assistant("Valuation is stretched and upside looks priced in."), nil

	case strings.Contains(sys, "portfolio manager and debate facilitator"):
		return assistant("The bull case is stronger. Recommendation: Buy. Scale in over two weeks."), nil

	case strings.Contains(sys, "Senior Trader"):
		return assistant("Enter at 193, target 210, stop-loss 185. FINAL TRANSACTION PROPOSAL: **BUY**"), nil

	case strings.Contains(sys, "As the Risky Risk Analyst"):
		return assistant("The upside is worth the exposure; size up."), nil

	case strings.Contains(sys, "As the Safe/Conservative Risk Analyst"):
		return assistant("Trim the size and tighten the stop."), nil

	case strings.Contains(sys, "As the Neutral Risk Analyst"):
		return assistant("A half position balances both concerns."), nil

	case strings.Contains(sys, "Risk Management Judge"):
		return assistant("The plan stands with a tighter stop. FINAL TRANSACTION PROPOSAL: **BUY**"), nil
	}
	return assistant("ok"), nil
}

func (m *stubModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{out}), nil
}

func (m *stubModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

// writeSyntheticPrices writes a year of weekday bars ending on 2024-06-03,
// enough history for the 200-day moving average to be defined.
func writeSyntheticPrices(t *testing.T, cfg *config.Config, symbol string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Date,Open,High,Low,Close,Adj Close,Volume\n")

	day, _ := time.Parse("2006-01-02", "2023-05-01")
	end, _ := time.Parse("2006-01-02", "2024-06-03")
	i := 0
	for ; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		closePx := 150.0 + 0.1*float64(i)
		fmt.Fprintf(&sb, "%s,%.2f,%.2f,%.2f,%.2f,%.2f,%d\n",
			day.Format("2006-01-02"),
			closePx-0.5, closePx+1.0, closePx-1.0, closePx, closePx, 50000000+i)
		i++
	}
	if i < 200 {
		t.Fatalf("fixture too short for slow indicators: %d rows", i)
	}

	path := filepath.Join(cfg.DataDir, "market_data", "price_data",
		symbol+"-YFin-data-2015-01-01-2025-03-25.csv")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func offlineDeps(t *testing.T, stub *stubModel) *agents.Deps {
	t.Helper()
	cfg := config.DefaultConfigWithRoot(t.TempDir())
	cfg.OnlineTools = false
	cfg.CacheEnabled = false
	cfg.MaxDebateRounds = 1
	cfg.MaxRiskDiscussRounds = 1
	cfg.RetryMaxAttempts = 1
	writeSyntheticPrices(t, cfg, "AAPL")

	e := constEmbedder{}
	return &agents.Deps{
		Cfg:     cfg,
		Models:  &agents.Models{Quick: stub, Deep: stub},
		Toolkit: dataflows.NewToolkit(cfg),
		Banks: &memory.Banks{
			Bull:        memory.NewInMemoryStore(memory.BullMemory, "cosine", e),
			Bear:        memory.NewInMemoryStore(memory.BearMemory, "cosine", e),
			Trader:      memory.NewInMemoryStore(memory.TraderMemory, "cosine", e),
			InvestJudge: memory.NewInMemoryStore(memory.InvestJudgeMemory, "cosine", e),
			RiskManager: memory.NewInMemoryStore(memory.RiskManagerMemory, "cosine", e),
		},
	}
}

func TestPipelineEndToEndOffline(t *testing.T) {
	ctx := context.Background()
	stub := &stubModel{}
	deps := offlineDeps(t, stub)

	orchestrator, err := NewTradingOrchestrator(ctx, deps)
	if err != nil {
		t.Fatalf("build orchestrator: %v", err)
	}

	date, _ := time.Parse("2006-01-02", "2024-06-03")
	state := models.NewTradingState("AAPL", date, nil, deps.Cfg)
	final, err := orchestrator.Invoke(ctx, state)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	// Analyst phase filled all four reports.
	if final.MarketReport != "Technical setup is balanced with a mild bullish tilt." {
		t.Errorf("market report = %q", final.MarketReport)
	}
	if final.SentimentReport == "" || final.NewsReport == "" || final.FundamentalsReport == "" {
		t.Fatalf("missing analyst reports: %+v", []string{final.SentimentReport, final.NewsReport, final.FundamentalsReport})
	}

	// The market analyst handed the model a computed indicator table.
	if !strings.Contains(stub.marketUserInput, "close_200_sma") {
		t.Errorf("indicator table missing close_200_sma:\n%s", stub.marketUserInput)
	}
	if strings.Contains(stub.marketUserInput, "Not enough data") {
		t.Errorf("indicators undefined despite a year of bars:\n%s", stub.marketUserInput)
	}

	// The social analyst ran a full tool loop before answering.
	if stub.socialCalls != 2 {
		t.Errorf("social analyst model calls = %d, want 2", stub.socialCalls)
	}
	if !stub.socialToolSeen {
		t.Error("tool observation never reached the social analyst's second call")
	}

	// One debate round: bull then bear, then the research manager.
	if final.InvestmentDebateState.Count != 2 {
		t.Errorf("debate count = %d, want 2", final.InvestmentDebateState.Count)
	}
	if !strings.Contains(final.InvestmentDebateState.History, "Bull Analyst: ") ||
		!strings.Contains(final.InvestmentDebateState.History, "Bear Analyst: ") {
		t.Errorf("debate history incomplete:\n%s", final.InvestmentDebateState.History)
	}
	if final.InvestmentPlan == "" {
		t.Error("research manager produced no investment plan")
	}
	if !strings.Contains(final.TraderInvestmentPlan, "FINAL TRANSACTION PROPOSAL") {
		t.Errorf("trader plan missing proposal tag: %q", final.TraderInvestmentPlan)
	}

	// One risk round: risky, safe, neutral, then the judge.
	if final.RiskDebateState.Count != 3 {
		t.Errorf("risk count = %d, want 3", final.RiskDebateState.Count)
	}
	if final.RiskDebateState.LatestSpeaker != consts.Agent_NeutralAnalyst {
		t.Errorf("latest risk speaker = %q, want neutral", final.RiskDebateState.LatestSpeaker)
	}
	if final.RiskDebateState.RiskyHistory == "" || final.RiskDebateState.SafeHistory == "" ||
		final.RiskDebateState.NeutralHistory == "" {
		t.Error("risk speaker histories incomplete")
	}
	if final.Sender != consts.Agent_RiskJudge {
		t.Errorf("final sender = %q, want risk judge", final.Sender)
	}

	decision := processing.ProcessSignal(final)
	if decision.Action != consts.ActionBuy {
		t.Errorf("decision action = %q, want BUY", decision.Action)
	}
	if decision.Symbol != "AAPL" || decision.Date != "2024-06-03" {
		t.Errorf("decision identity wrong: %+v", decision)
	}
}

func TestPipelineSkipsUnselectedAnalysts(t *testing.T) {
	ctx := context.Background()
	stub := &stubModel{}
	deps := offlineDeps(t, stub)

	orchestrator, err := NewTradingOrchestrator(ctx, deps)
	if err != nil {
		t.Fatalf("build orchestrator: %v", err)
	}

	date, _ := time.Parse("2006-01-02", "2024-06-03")
	state := models.NewTradingState("AAPL", date, []string{consts.MarketAnalyst}, deps.Cfg)
	final, err := orchestrator.Invoke(ctx, state)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	if final.MarketReport == "" {
		t.Error("selected analyst produced no report")
	}
	if stub.socialCalls != 0 {
		t.Errorf("unselected social analyst ran %d times", stub.socialCalls)
	}
	if final.SentimentReport != "" || final.NewsReport != "" || final.FundamentalsReport != "" {
		t.Error("unselected analysts filled reports")
	}
	if final.FinalTradeDecision == "" {
		t.Error("pipeline did not reach the risk judge")
	}
}
