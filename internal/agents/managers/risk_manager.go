package managers

import (
	"context"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

// NewRiskJudgeNode evaluates the three-way risk discussion and issues the
// final trade decision, refining the trader's plan.
func NewRiskJudgeNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		var next string
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			situation := agents.CurrentSituation(state)
			pastMemories := agents.RetrieveMemories(ctx, deps.Banks.RiskManager, situation, memoryMatches)

			sysPrompt, err := utils.LoadPromptWithContext("managers/risk_manager", map[string]string{
				"History":       state.RiskDebateState.History,
				"TraderPlan":    state.TraderInvestmentPlan,
				"PastMemoryStr": pastMemories,
			})
			if err != nil {
				return err
			}

			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Deep.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call,
				[]*schema.Message{schema.SystemMessage(sysPrompt)}, deps.Cfg, consts.Agent_RiskJudge)

			state.RiskDebateState.JudgeDecision = out.Content
			state.FinalTradeDecision = out.Content
			state.Sender = consts.Agent_RiskJudge
			state.Goto = consts.Finalize
			next = state.Goto
			logger.Debug().Int("risk_turns", state.RiskDebateState.Count).Msg("risk judge decided")
			return nil
		})
		return next, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("judge", compose.InvokableLambdaWithOption(run))
	_ = g.AddEdge(compose.START, "judge")
	_ = g.AddEdge("judge", compose.END)
	return g, nil
}
