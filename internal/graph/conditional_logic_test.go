package graph

import (
	"testing"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/models"
)

func logicWithRounds(debate, risk int) *ConditionalLogic {
	cfg := config.DefaultConfig()
	cfg.MaxDebateRounds = debate
	cfg.MaxRiskDiscussRounds = risk
	return NewConditionalLogic(cfg)
}

func TestDebateCutoffBoundary(t *testing.T) {
	cl := logicWithRounds(2, 1)
	// Two turns per round: the cutoff sits at count 4.
	cases := []struct {
		count        int
		wantContinue bool
	}{
		{3, true},
		{4, false},
		{5, false},
	}
	for _, tc := range cases {
		state := &models.TradingState{
			InvestmentDebateState: &models.InvestDebateState{Count: tc.count},
		}
		if got := cl.ShouldContinueDebate(state); got != tc.wantContinue {
			t.Errorf("count %d: ShouldContinueDebate = %v, want %v", tc.count, got, tc.wantContinue)
		}
	}
}

func TestNextInvestmentSpeakerAlternates(t *testing.T) {
	cl := logicWithRounds(2, 1)

	state := &models.TradingState{InvestmentDebateState: &models.InvestDebateState{}}
	if got := cl.NextInvestmentSpeaker(state); got != consts.BullResearcher {
		t.Fatalf("opening speaker = %q, want bull", got)
	}

	state.InvestmentDebateState.Count = 1
	state.InvestmentDebateState.CurrentResponse = "Bull Analyst: growth is intact"
	if got := cl.NextInvestmentSpeaker(state); got != consts.BearResearcher {
		t.Fatalf("after bull = %q, want bear", got)
	}

	state.InvestmentDebateState.Count = 2
	state.InvestmentDebateState.CurrentResponse = "Bear Analyst: valuation stretched"
	if got := cl.NextInvestmentSpeaker(state); got != consts.BullResearcher {
		t.Fatalf("after bear = %q, want bull", got)
	}

	state.InvestmentDebateState.Count = 4
	if got := cl.NextInvestmentSpeaker(state); got != consts.ResearchManager {
		t.Fatalf("at cutoff = %q, want research manager", got)
	}
}

func TestRiskCutoffBoundary(t *testing.T) {
	cl := logicWithRounds(1, 2)
	// Three turns per round: the cutoff sits at count 6.
	cases := []struct {
		count        int
		wantContinue bool
	}{
		{5, true},
		{6, false},
		{7, false},
	}
	for _, tc := range cases {
		state := &models.TradingState{
			RiskDebateState: &models.RiskDebateState{Count: tc.count},
		}
		if got := cl.ShouldContinueRiskDiscussion(state); got != tc.wantContinue {
			t.Errorf("count %d: ShouldContinueRiskDiscussion = %v, want %v", tc.count, got, tc.wantContinue)
		}
	}
}

func TestNextRiskSpeakerRotatesThreeWay(t *testing.T) {
	cl := logicWithRounds(1, 2)
	state := &models.TradingState{RiskDebateState: &models.RiskDebateState{}}

	// Fresh discussion opens with the risky analyst.
	if got := cl.NextRiskSpeaker(state); got != consts.RiskyAnalyst {
		t.Fatalf("opening speaker = %q, want risky", got)
	}

	// Two full cycles of risky -> safe -> neutral.
	want := []struct {
		speaker string
		next    string
	}{
		{consts.Agent_RiskyAnalyst, consts.SafeAnalyst},
		{consts.Agent_SafeAnalyst, consts.NeutralAnalyst},
		{consts.Agent_NeutralAnalyst, consts.RiskyAnalyst},
		{consts.Agent_RiskyAnalyst, consts.SafeAnalyst},
		{consts.Agent_SafeAnalyst, consts.NeutralAnalyst},
	}
	for i, step := range want {
		state.RiskDebateState.Count = i + 1
		state.RiskDebateState.LatestSpeaker = step.speaker
		if got := cl.NextRiskSpeaker(state); got != step.next {
			t.Fatalf("turn %d after %q = %q, want %q", i+1, step.speaker, got, step.next)
		}
	}

	// Budget spent: the judge takes over regardless of who spoke last.
	state.RiskDebateState.Count = 6
	state.RiskDebateState.LatestSpeaker = consts.Agent_NeutralAnalyst
	if got := cl.NextRiskSpeaker(state); got != consts.RiskJudge {
		t.Fatalf("at cutoff = %q, want risk judge", got)
	}
}
