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

// NewResearchManagerNode weighs the bull/bear debate, commits to a stance
// and writes the investment plan the trader will execute against.
func NewResearchManagerNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		var next string
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			situation := agents.CurrentSituation(state)
			pastMemories := agents.RetrieveMemories(ctx, deps.Banks.InvestJudge, situation, memoryMatches)

			sysPrompt, err := utils.LoadPromptWithContext("managers/research_manager", map[string]string{
				"History":       state.InvestmentDebateState.History,
				"PastMemoryStr": pastMemories,
			})
			if err != nil {
				return err
			}

			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Deep.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call,
				[]*schema.Message{schema.SystemMessage(sysPrompt)}, deps.Cfg, consts.Agent_ResearchManager)

			state.InvestmentDebateState.JudgeDecision = out.Content
			state.InvestmentPlan = out.Content
			state.Sender = consts.Agent_ResearchManager
			state.Goto = consts.Trader
			next = state.Goto
			logger.Debug().Int("debate_turns", state.InvestmentDebateState.Count).Msg("research manager decided")
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
