package models

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/consts"
)

// InvestDebateState tracks the bull/bear researcher exchange. Count increases
// by one per turn; once Count reaches twice the configured debate rounds the
// next hop is the research manager, never another researcher.
type InvestDebateState struct {
	BullHistory     string `json:"bull_history"`
	BearHistory     string `json:"bear_history"`
	History         string `json:"history"`
	CurrentResponse string `json:"current_response"`
	JudgeDecision   string `json:"judge_decision"`
	Count           int    `json:"count"`
}

// RiskDebateState tracks the three-way risk discussion. Rotation order is
// risky -> safe -> neutral; Count reaching three times the configured risk
// rounds hands off to the risk judge.
type RiskDebateState struct {
	RiskyHistory           string `json:"risky_history"`
	SafeHistory            string `json:"safe_history"`
	NeutralHistory         string `json:"neutral_history"`
	History                string `json:"history"`
	CurrentRiskyResponse   string `json:"current_risky_response"`
	CurrentSafeResponse    string `json:"current_safe_response"`
	CurrentNeutralResponse string `json:"current_neutral_response"`
	JudgeDecision          string `json:"judge_decision"`
	LatestSpeaker          string `json:"latest_speaker"`
	Count                  int    `json:"count"`
}

// TradingState is the shared graph state. Every node reads and mutates it
// through compose.ProcessState; Goto names the next node for the branch
// dispatcher.
type TradingState struct {
	Messages          []*schema.Message `json:"messages"`
	CompanyOfInterest string            `json:"company_of_interest"`
	TradeDate         string            `json:"trade_date"`
	Sender            string            `json:"sender"`

	MarketReport       string `json:"market_report"`
	SentimentReport    string `json:"sentiment_report"`
	NewsReport         string `json:"news_report"`
	FundamentalsReport string `json:"fundamentals_report"`

	InvestmentDebateState *InvestDebateState `json:"investment_debate_state"`
	InvestmentPlan        string             `json:"investment_plan"`
	TraderInvestmentPlan  string             `json:"trader_investment_plan"`

	RiskDebateState    *RiskDebateState `json:"risk_debate_state"`
	FinalTradeDecision string           `json:"final_trade_decision"`

	Decision *TradingDecision `json:"decision,omitempty"`

	SelectedAnalysts []string       `json:"selected_analysts"`
	Goto             string         `json:"goto"`
	Config           *config.Config `json:"-"`
}

// NewTradingState builds the initial state for one propagation run.
func NewTradingState(symbol string, date time.Time, selectedAnalysts []string, cfg *config.Config) *TradingState {
	if len(selectedAnalysts) == 0 {
		selectedAnalysts = consts.AnalystOrder
	}
	tradeDate := date.Format("2006-01-02")
	return &TradingState{
		Messages: []*schema.Message{
			schema.UserMessage(symbol),
		},
		CompanyOfInterest:     symbol,
		TradeDate:             tradeDate,
		InvestmentDebateState: &InvestDebateState{},
		RiskDebateState:       &RiskDebateState{LatestSpeaker: ""},
		SelectedAnalysts:      selectedAnalysts,
		Goto:                  selectedAnalysts[0],
		Config:                cfg,
	}
}

// NextAnalyst returns the node that follows current in the selected analyst
// chain, or consts.BullResearcher when current is the last selected analyst.
func (s *TradingState) NextAnalyst(current string) string {
	selected := s.SelectedAnalysts
	if len(selected) == 0 {
		selected = consts.AnalystOrder
	}
	for i, name := range selected {
		if name == current && i+1 < len(selected) {
			return selected[i+1]
		}
	}
	return consts.BullResearcher
}
