// Package graph wires the role nodes into one eino state graph: the analyst
// chain, the bull/bear debate loop, the trading step and the risk discussion
// loop, ending in the risk judge's final decision.
package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/agents/analysts"
	"github.com/lilong555/tradingagent/internal/agents/managers"
	"github.com/lilong555/tradingagent/internal/agents/researchers"
	riskmgmt "github.com/lilong555/tradingagent/internal/agents/risk_mgmt"
	"github.com/lilong555/tradingagent/internal/agents/trader"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
)

var logger = logging.NewLogger("graph")

// agentHandOff dispatches on state.Goto, which the finishing node has
// already set to the next selected analyst (or the bull researcher).
func agentHandOff(ctx context.Context, _ string) (string, error) {
	var next string
	err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
		next = state.Goto
		return nil
	})
	return next, err
}

type nodeBuilder func(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error)

// NewTradingOrchestrator assembles and compiles the full pipeline. The
// returned runnable carries the run's TradingState as graph-local state;
// the input state is copied in by the propagator node and the same state is
// handed back by the finalize node.
func NewTradingOrchestrator(ctx context.Context, deps *agents.Deps) (compose.Runnable[*models.TradingState, *models.TradingState], error) {
	g := compose.NewGraph[*models.TradingState, *models.TradingState](
		compose.WithGenLocalState(func(ctx context.Context) *models.TradingState {
			return &models.TradingState{}
		}),
	)

	propagate := func(ctx context.Context, input *models.TradingState, opts ...any) (string, error) {
		var first string
		err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
			*state = *input
			first = state.Goto
			return nil
		})
		return first, err
	}
	finalize := func(ctx context.Context, _ string, opts ...any) (*models.TradingState, error) {
		var final *models.TradingState
		err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
			final = state
			return nil
		})
		return final, err
	}
	_ = g.AddLambdaNode(consts.Propagator, compose.InvokableLambdaWithOption(propagate))
	_ = g.AddLambdaNode(consts.Finalize, compose.InvokableLambdaWithOption(finalize))

	builders := map[string]nodeBuilder{
		consts.MarketAnalyst:       analysts.NewMarketAnalystNode,
		consts.SocialMediaAnalyst:  analysts.NewSocialMediaAnalystNode,
		consts.NewsAnalyst:         analysts.NewNewsAnalystNode,
		consts.FundamentalsAnalyst: analysts.NewFundamentalsAnalystNode,
		consts.BullResearcher:      researchers.NewBullResearcherNode,
		consts.BearResearcher:      researchers.NewBearResearcherNode,
		consts.ResearchManager:     managers.NewResearchManagerNode,
		consts.Trader:              trader.NewTraderNode,
		consts.RiskyAnalyst:        riskmgmt.NewRiskyAnalystNode,
		consts.SafeAnalyst:         riskmgmt.NewSafeAnalystNode,
		consts.NeutralAnalyst:      riskmgmt.NewNeutralAnalystNode,
		consts.RiskJudge:           managers.NewRiskJudgeNode,
	}
	for name, build := range builders {
		node, err := build(ctx, deps)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", name, err)
		}
		if err := g.AddGraphNode(name, node, compose.WithNodeName(name)); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	// The analyst phase walks the selected chain; every analyst hands off
	// through state.Goto so a subset selection just skips ahead.
	analystOutMap := map[string]bool{
		consts.MarketAnalyst:       true,
		consts.SocialMediaAnalyst:  true,
		consts.NewsAnalyst:         true,
		consts.FundamentalsAnalyst: true,
		consts.BullResearcher:      true,
	}
	_ = g.AddBranch(consts.Propagator, compose.NewGraphBranch(agentHandOff, analystOutMap))
	for _, name := range consts.AnalystOrder {
		_ = g.AddBranch(name, compose.NewGraphBranch(agentHandOff, analystOutMap))
	}

	cl := NewConditionalLogic(deps.Cfg)
	debateOutMap := map[string]bool{
		consts.BullResearcher:  true,
		consts.BearResearcher:  true,
		consts.ResearchManager: true,
	}
	_ = g.AddBranch(consts.BullResearcher, compose.NewGraphBranch(cl.DebateHandOff, debateOutMap))
	_ = g.AddBranch(consts.BearResearcher, compose.NewGraphBranch(cl.DebateHandOff, debateOutMap))

	riskOutMap := map[string]bool{
		consts.RiskyAnalyst:   true,
		consts.SafeAnalyst:    true,
		consts.NeutralAnalyst: true,
		consts.RiskJudge:      true,
	}
	_ = g.AddBranch(consts.RiskyAnalyst, compose.NewGraphBranch(cl.RiskHandOff, riskOutMap))
	_ = g.AddBranch(consts.SafeAnalyst, compose.NewGraphBranch(cl.RiskHandOff, riskOutMap))
	_ = g.AddBranch(consts.NeutralAnalyst, compose.NewGraphBranch(cl.RiskHandOff, riskOutMap))

	_ = g.AddEdge(compose.START, consts.Propagator)
	_ = g.AddEdge(consts.ResearchManager, consts.Trader)
	_ = g.AddEdge(consts.Trader, consts.RiskyAnalyst)
	_ = g.AddEdge(consts.RiskJudge, consts.Finalize)
	_ = g.AddEdge(consts.Finalize, compose.END)

	r, err := g.Compile(ctx,
		compose.WithGraphName("TradingAgents"),
		compose.WithNodeTriggerMode(compose.AnyPredecessor),
		compose.WithMaxRunSteps(deps.Cfg.MaxRecurLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("compile trading graph: %w", err)
	}
	logger.Debug().Int("nodes", len(builders)).Msg("trading graph compiled")
	return r, nil
}
