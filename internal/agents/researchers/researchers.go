// Package researchers builds the bull and bear debate nodes. Each turn
// formats its role prompt with the four analyst reports, the running debate
// transcript and lessons retrieved from its own memory bank, then appends
// the labelled argument to the shared debate state.
package researchers

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

var logger = logging.NewLogger("researchers")

// memoryMatches per debate turn.
const memoryMatches = 2

type debateSpec struct {
	node       string
	role       string
	promptPath string
	// label prefixes the argument in the transcript, e.g. "Bull Analyst: ".
	label string
	bank  func(deps *agents.Deps) memory.Store
	// record appends the labelled argument to the speaker's own history.
	record func(ds *models.InvestDebateState, argument string)
}

func newDebateNode(ctx context.Context, deps *agents.Deps, spec debateSpec) (*compose.Graph[string, string], error) {
	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			situation := agents.CurrentSituation(state)
			pastMemories := agents.RetrieveMemories(ctx, spec.bank(deps), situation, memoryMatches)

			tplText, err := utils.LoadPrompt(spec.promptPath)
			if err != nil {
				return err
			}
			tpl := prompt.FromMessages(schema.FString, schema.SystemMessage(tplText))
			input, err := tpl.Format(ctx, map[string]any{
				"market_research_report": state.MarketReport,
				"sentiment_report":       state.SentimentReport,
				"news_report":            state.NewsReport,
				"fundamentals_report":    state.FundamentalsReport,
				"history":                state.InvestmentDebateState.History,
				"current_response":       state.InvestmentDebateState.CurrentResponse,
				"past_memory_str":        pastMemories,
			})
			if err != nil {
				return err
			}

			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Quick.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call, input, deps.Cfg, spec.role)

			argument := spec.label + out.Content
			ds := state.InvestmentDebateState
			spec.record(ds, argument)
			ds.History += "\n" + argument
			ds.CurrentResponse = argument
			ds.Count++
			state.Sender = spec.role
			logger.Debug().Str("node", spec.node).Int("count", ds.Count).Msg("debate turn recorded")
			return nil
		})
		return spec.node, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("debate", compose.InvokableLambdaWithOption(run))
	_ = g.AddEdge(compose.START, "debate")
	_ = g.AddEdge("debate", compose.END)
	return g, nil
}
