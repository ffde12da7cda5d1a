// Package reflection turns realized returns into stored lessons. After a
// position's outcome is known, each learning role reviews its own output
// from the run and the resulting lesson is written to that role's memory
// bank, keyed on the situation the run saw.
package reflection

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/agents"
	"github.com/lilong555/tradingagent/internal/logging"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
	"github.com/lilong555/tradingagent/internal/utils"
)

var logger = logging.NewLogger("reflection")

// Reflector runs the post-trade review for all five learning roles.
type Reflector struct {
	cfg   *config.Config
	model model.ToolCallingChatModel
	banks *memory.Banks
}

func NewReflector(cfg *config.Config, chatModel model.ToolCallingChatModel, banks *memory.Banks) *Reflector {
	return &Reflector{cfg: cfg, model: chatModel, banks: banks}
}

type component struct {
	role   string
	output func(state *models.TradingState) string
	bank   func(b *memory.Banks) memory.Store
}

// components lists who learns from a finished run and which of their
// outputs is reviewed.
var components = []component{
	{
		role:   "bull researcher",
		output: func(s *models.TradingState) string { return s.InvestmentDebateState.BullHistory },
		bank:   func(b *memory.Banks) memory.Store { return b.Bull },
	},
	{
		role:   "bear researcher",
		output: func(s *models.TradingState) string { return s.InvestmentDebateState.BearHistory },
		bank:   func(b *memory.Banks) memory.Store { return b.Bear },
	},
	{
		role:   "trader",
		output: func(s *models.TradingState) string { return s.TraderInvestmentPlan },
		bank:   func(b *memory.Banks) memory.Store { return b.Trader },
	},
	{
		role:   "research manager",
		output: func(s *models.TradingState) string { return s.InvestmentDebateState.JudgeDecision },
		bank:   func(b *memory.Banks) memory.Store { return b.InvestJudge },
	},
	{
		role:   "risk judge",
		output: func(s *models.TradingState) string { return s.RiskDebateState.JudgeDecision },
		bank:   func(b *memory.Banks) memory.Store { return b.RiskManager },
	},
}

// ReflectAndRemember reviews every role's output against the realized
// returns and stores the lessons. Unlike report generation this hard-fails:
// a lesson that silently degraded to error text would poison the banks.
// Roles are independent, so one failure does not stop the others.
func (r *Reflector) ReflectAndRemember(ctx context.Context, state *models.TradingState, returns float64) error {
	situation := agents.CurrentSituation(state)

	var errs []error
	for _, c := range components {
		if err := r.reflectOne(ctx, c, state, situation, returns); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.role, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Reflector) reflectOne(ctx context.Context, c component, state *models.TradingState, situation string, returns float64) error {
	output := c.output(state)
	if output == "" {
		logger.Debug().Str("role", c.role).Msg("nothing to reflect on")
		return nil
	}

	sysPrompt, err := utils.LoadPrompt("reflection/reflector")
	if err != nil {
		return err
	}
	input := []*schema.Message{
		schema.SystemMessage(sysPrompt),
		schema.UserMessage(fmt.Sprintf(
			"Returns: %v\n\nAnalysis/Decision of the %s:\n%s\n\nObjective market reports for reference:\n%s",
			returns, c.role, output, situation)),
	}

	call := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
		return r.model.Generate(ctx, msgs)
	}
	lesson, err := agents.CallWithRetry(ctx, call, input, r.cfg)
	if err != nil {
		return err
	}

	return c.bank(r.banks).AddSituations(ctx, []memory.Pair{
		{Situation: situation, Recommendation: lesson.Content},
	})
}
