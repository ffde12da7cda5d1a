package processing

import (
	"testing"

	"github.com/lilong555/tradingagent/internal/models"
)

func TestExtractSignalMarker(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"plain", "After weighing both sides. FINAL TRANSACTION PROPOSAL: BUY", "BUY"},
		{"bold", "FINAL TRANSACTION PROPOSAL: **SELL**", "SELL"},
		{"lowercase marker", "final transaction proposal: hold", "HOLD"},
		{"extra spacing", "FINAL  TRANSACTION  PROPOSAL:   **BUY**", "BUY"},
		{"marker mid-text", "The plan says FINAL TRANSACTION PROPOSAL: **HOLD** and nothing more.", "HOLD"},
		{"last marker wins", "Bull quoted FINAL TRANSACTION PROPOSAL: **BUY** earlier, but my verdict is FINAL TRANSACTION PROPOSAL: **SELL**", "SELL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSignal(tc.text); got != tc.want {
				t.Fatalf("ExtractSignal(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractSignalFallbackScoring(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"bullish text", "The stock is undervalued and oversold, a clear buy on any weakness. Buy.", "BUY"},
		{"bearish text", "Overvalued and overbought, I would sell into strength and exit the position.", "SELL"},
		{"mixed text defaults to hold", "Some say buy, others say sell.", "HOLD"},
		{"empty text", "", "HOLD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractSignal(tc.text); got != tc.want {
				t.Fatalf("ExtractSignal(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestProcessSignalReadsOnlyFinalDecision(t *testing.T) {
	state := &models.TradingState{
		CompanyOfInterest: "AAPL",
		TradeDate:         "2024-06-03",
		InvestmentDebateState: &models.InvestDebateState{
			JudgeDecision: "FINAL TRANSACTION PROPOSAL: **SELL**",
		},
		FinalTradeDecision: "Entry around $192.50, stop-loss at $185, take profit near $210. FINAL TRANSACTION PROPOSAL: **BUY**",
	}

	decision := ProcessSignal(state)
	if decision.Action != "BUY" {
		t.Fatalf("action = %q, want BUY", decision.Action)
	}
	if decision.Symbol != "AAPL" || decision.Date != "2024-06-03" {
		t.Fatalf("identity fields wrong: %+v", decision)
	}
	if decision.EntryPrice != 192.50 {
		t.Errorf("entry price = %v, want 192.50", decision.EntryPrice)
	}
	if decision.StopLoss != 185 {
		t.Errorf("stop loss = %v, want 185", decision.StopLoss)
	}
	if decision.TakeProfit != 210 {
		t.Errorf("take profit = %v, want 210", decision.TakeProfit)
	}
}

func TestProcessSignalEmptyDecision(t *testing.T) {
	state := &models.TradingState{
		CompanyOfInterest:     "MSFT",
		TradeDate:             "2024-06-03",
		InvestmentDebateState: &models.InvestDebateState{},
	}
	decision := ProcessSignal(state)
	if decision.Action != "HOLD" {
		t.Fatalf("action = %q, want HOLD for empty text", decision.Action)
	}
	if decision.Confidence != 0.5 {
		t.Fatalf("confidence = %v, want neutral 0.5", decision.Confidence)
	}
}

func TestConfidenceAgreement(t *testing.T) {
	unanimous := "FINAL TRANSACTION PROPOSAL: **BUY**. Buy the dip, the stock is undervalued."
	if c := confidence(unanimous, "BUY"); c != 1.0 {
		t.Fatalf("unanimous confidence = %v, want 1.0", c)
	}

	contested := "Some argue sell, others argue buy. FINAL TRANSACTION PROPOSAL: **BUY**"
	if c := confidence(contested, "BUY"); c < 0.5 {
		t.Fatalf("marker-backed confidence = %v, want >= 0.5", c)
	}
}
