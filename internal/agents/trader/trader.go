// Package trader builds the node that turns the research manager's
// investment plan into a concrete trading proposal ending in the mandatory
// FINAL TRANSACTION PROPOSAL tag.
package trader

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

var logger = logging.NewLogger("trader")

const memoryMatches = 2

// NewTraderNode builds the trader. It reads the investment plan plus its
// own past lessons and must answer with an actionable plan.
func NewTraderNode(ctx context.Context, deps *agents.Deps) (*compose.Graph[string, string], error) {
	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		var next string
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			situation := agents.CurrentSituation(state)
			pastMemories := agents.RetrieveMemories(ctx, deps.Banks.Trader, situation, memoryMatches)

			sysPrompt, err := utils.LoadPrompt("trader/trader")
			if err != nil {
				return err
			}
			sysPrompt = strings.ReplaceAll(sysPrompt, "{past_memory_str}", pastMemories)

			planContext := fmt.Sprintf(
				"Based on a comprehensive analysis by a team of analysts, here is an investment plan tailored for %s. "+
					"This plan incorporates insights from current technical market trends, macroeconomic indicators, "+
					"and social media sentiment. Use this plan as a foundation for evaluating your next trading decision.\n\n"+
					"Proposed Investment Plan: %s\n\n"+
					"Leverage these insights to make an informed and strategic decision.",
				state.CompanyOfInterest, state.InvestmentPlan)

			input := []*schema.Message{
				schema.SystemMessage(sysPrompt),
				schema.UserMessage(planContext),
			}
			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Quick.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call, input, deps.Cfg, consts.Agent_Trader)

			state.TraderInvestmentPlan = out.Content
			state.Messages = append(state.Messages, out)
			state.Sender = consts.Agent_Trader
			state.Goto = consts.RiskyAnalyst
			next = state.Goto
			logger.Debug().Str("symbol", state.CompanyOfInterest).Msg("trader plan produced")
			return nil
		})
		return next, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("trade", compose.InvokableLambdaWithOption(run))
	_ = g.AddEdge(compose.START, "trade")
	_ = g.AddEdge("trade", compose.END)
	return g, nil
}
