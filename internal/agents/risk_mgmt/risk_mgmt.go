// Package riskmgmt builds the three risk debate speakers. Each critiques
// the trader's plan from a fixed stance (aggressive, conservative, neutral),
// responding to the last arguments of the other two.
package riskmgmt

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

var logger = logging.NewLogger("risk_mgmt")

type speakerSpec struct {
	node       string
	role       string
	promptPath string
	// record appends the labelled argument to the speaker's own history and
	// updates its current-response slot.
	record func(ds *models.RiskDebateState, argument string)
}

func newSpeakerNode(ctx context.Context, deps *agents.Deps, spec speakerSpec) (*compose.Graph[string, string], error) {
	run := func(ctx context.Context, _ string, opts ...any) (string, error) {
		err := compose.ProcessState[*models.TradingState](ctx, func(ctx context.Context, state *models.TradingState) error {
			tplText, err := utils.LoadPrompt(spec.promptPath)
			if err != nil {
				return err
			}
			ds := state.RiskDebateState
			tpl := prompt.FromMessages(schema.FString, schema.SystemMessage(tplText))
			input, err := tpl.Format(ctx, map[string]any{
				"trader_decision":          state.TraderInvestmentPlan,
				"market_research_report":   state.MarketReport,
				"sentiment_report":         state.SentimentReport,
				"news_report":              state.NewsReport,
				"fundamentals_report":      state.FundamentalsReport,
				"history":                  ds.History,
				"current_risky_response":   ds.CurrentRiskyResponse,
				"current_safe_response":    ds.CurrentSafeResponse,
				"current_neutral_response": ds.CurrentNeutralResponse,
			})
			if err != nil {
				return err
			}

			call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
				return deps.Models.Quick.Generate(ctx, msgs)
			}
			out := agents.SoftGenerate(ctx, call, input, deps.Cfg, spec.role)

			argument := spec.role + ": " + out.Content
			spec.record(ds, argument)
			ds.History += "\n" + argument
			ds.LatestSpeaker = spec.role
			ds.Count++
			state.Sender = spec.role
			logger.Debug().Str("node", spec.node).Int("count", ds.Count).Msg("risk turn recorded")
			return nil
		})
		return spec.node, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("speak", compose.InvokableLambdaWithOption(run))
	_ = g.AddEdge(compose.START, "speak")
	_ = g.AddEdge("speak", compose.END)
	return g, nil
}
