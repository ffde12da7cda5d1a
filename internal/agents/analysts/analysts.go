// Package analysts builds the four data-gathering nodes. Social, news and
// fundamentals are react agents that loop through their tools until the
// model stops requesting them; the market analyst computes its technical
// indicators deterministically and only asks the model to narrate them.
package analysts

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

var logger = logging.NewLogger("analysts")

// collaborationTpl frames every tool-calling analyst as one assistant in a
// relay of specialists.
const collaborationTpl = `You are a helpful AI assistant, collaborating with other assistants.
Use the provided tools to progress towards answering the question.
If you are unable to fully answer, that's OK; another assistant with different tools
will help where you left off. Execute what you can to make progress.
If you or any other assistant has the FINAL TRANSACTION PROPOSAL: **BUY/HOLD/SELL** or deliverable,
prefix your response with FINAL TRANSACTION PROPOSAL: **BUY/HOLD/SELL** so the team knows to stop.

You have access to the following tools: {tool_names}.

{system_message}

For your reference, the current date is {current_date}. The company we want to look at is {ticker}.`

// roleSpec describes one react analyst: its node name, prompt file, tool
// set and which report field it fills.
type roleSpec struct {
	node       string
	role       string
	promptPath string
	tools      []tool.BaseTool
	setReport  func(state *models.TradingState, report string)
}

// newReactAnalystNode assembles the shared load -> agent -> router shape.
// The react agent owns the tool loop: a response with tool calls dispatches
// to the tools node, the observation is appended to the agent's message log
// and the model is re-invoked until a response carries no tool calls.
func newReactAnalystNode(ctx context.Context, deps *agents.Deps, spec roleSpec) (*compose.Graph[string, string], error) {
	toolNames := make([]string, 0, len(spec.tools))
	for _, t := range spec.tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: read tool info: %w", spec.node, err)
		}
		toolNames = append(toolNames, info.Name)
	}

	agent, err := react.NewAgent(ctx, &react.AgentConfig{
		MaxStep:          deps.Cfg.MaxRecurLimit,
		ToolCallingModel: deps.Models.Quick,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: spec.tools,
		},
		StreamToolCallChecker: agents.ToolCallChecker,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: create react agent: %w", spec.node, err)
	}

	load := func(ctx context.Context, _ string, opts ...any) ([]*schema.Message, error) {
		var output []*schema.Message
		stateErr := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
			roleMsg, err := utils.LoadPrompt(spec.promptPath)
			if err != nil {
				return err
			}
			// Role prompts may themselves reference the date and ticker.
			roleMsg = strings.ReplaceAll(roleMsg, "{current_date}", state.TradeDate)
			roleMsg = strings.ReplaceAll(roleMsg, "{ticker}", state.CompanyOfInterest)

			tpl := prompt.FromMessages(schema.FString,
				schema.SystemMessage(collaborationTpl),
				schema.MessagesPlaceholder("message_history", true),
			)
			output, err = tpl.Format(ctx, map[string]any{
				"tool_names":      strings.Join(toolNames, ", "),
				"system_message":  roleMsg,
				"current_date":    state.TradeDate,
				"ticker":          state.CompanyOfInterest,
				"message_history": state.Messages,
			})
			return err
		})
		return output, stateErr
	}

	run := func(ctx context.Context, input []*schema.Message, opts ...any) (*schema.Message, error) {
		call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
			return agent.Generate(ctx, msgs)
		}
		return agents.SoftGenerate(ctx, call, input, deps.Cfg, spec.role), nil
	}

	router := func(ctx context.Context, input *schema.Message, opts ...any) (string, error) {
		var next string
		err := compose.ProcessState[*models.TradingState](ctx, func(_ context.Context, state *models.TradingState) error {
			if input != nil {
				spec.setReport(state, input.Content)
				state.Messages = append(state.Messages, input)
				state.Sender = spec.role
			}
			state.Goto = state.NextAnalyst(spec.node)
			next = state.Goto
			logger.Debug().Str("node", spec.node).Str("next", next).Msg("analyst finished")
			return nil
		})
		return next, err
	}

	g := compose.NewGraph[string, string]()
	_ = g.AddLambdaNode("load", compose.InvokableLambdaWithOption(load))
	_ = g.AddLambdaNode("agent", compose.InvokableLambdaWithOption(run))
	_ = g.AddLambdaNode("router", compose.InvokableLambdaWithOption(router))
	_ = g.AddEdge(compose.START, "load")
	_ = g.AddEdge("load", "agent")
	_ = g.AddEdge("agent", "router")
	_ = g.AddEdge("router", compose.END)
	return g, nil
}
