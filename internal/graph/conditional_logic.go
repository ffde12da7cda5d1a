package graph

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/models"
)

// ConditionalLogic decides who speaks next in the two debate cycles. A
// bull/bear round is two turns, a risk round is three, so the cutoffs are
// 2*MaxDebateRounds and 3*MaxRiskDiscussRounds.
type ConditionalLogic struct {
	MaxDebateRounds      int
	MaxRiskDiscussRounds int
}

func NewConditionalLogic(cfg *config.Config) *ConditionalLogic {
	return &ConditionalLogic{
		MaxDebateRounds:      cfg.MaxDebateRounds,
		MaxRiskDiscussRounds: cfg.MaxRiskDiscussRounds,
	}
}

func (cl *ConditionalLogic) ShouldContinueDebate(state *models.TradingState) bool {
	return state.InvestmentDebateState.Count < 2*cl.MaxDebateRounds
}

func (cl *ConditionalLogic) ShouldContinueRiskDiscussion(state *models.TradingState) bool {
	return state.RiskDebateState.Count < 3*cl.MaxRiskDiscussRounds
}

// NextInvestmentSpeaker alternates bull and bear until the debate budget is
// spent, then hands off to the research manager. Whoever spoke last is
// identified by the label on the current response.
func (cl *ConditionalLogic) NextInvestmentSpeaker(state *models.TradingState) string {
	if !cl.ShouldContinueDebate(state) {
		return consts.ResearchManager
	}
	if strings.HasPrefix(state.InvestmentDebateState.CurrentResponse, "Bull") {
		return consts.BearResearcher
	}
	return consts.BullResearcher
}

// NextRiskSpeaker rotates risky -> safe -> neutral until the discussion
// budget is spent, then hands off to the risk judge.
func (cl *ConditionalLogic) NextRiskSpeaker(state *models.TradingState) string {
	if !cl.ShouldContinueRiskDiscussion(state) {
		return consts.RiskJudge
	}
	switch state.RiskDebateState.LatestSpeaker {
	case consts.Agent_RiskyAnalyst:
		return consts.SafeAnalyst
	case consts.Agent_SafeAnalyst:
		return consts.NeutralAnalyst
	case consts.Agent_NeutralAnalyst:
		return consts.RiskyAnalyst
	default:
		return consts.RiskyAnalyst
	}
}

// DebateHandOff is the branch condition after a researcher turn.
func (cl *ConditionalLogic) DebateHandOff(ctx context.Context, _ string) (string, error) {
	var next string
	err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
		next = cl.NextInvestmentSpeaker(state)
		state.Goto = next
		return nil
	})
	return next, err
}

// RiskHandOff is the branch condition after a risk speaker turn.
func (cl *ConditionalLogic) RiskHandOff(ctx context.Context, _ string) (string, error) {
	var next string
	err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
		next = cl.NextRiskSpeaker(state)
		state.Goto = next
		return nil
	})
	return next, err
}
