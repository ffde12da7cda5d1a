// Package agents holds what every role node shares: the chat models, the
// dependency bundle handed to node constructors, memory retrieval and the
// soft-fail model call wrapper.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/dataflows"
	"github.com/lilong555/tradingagent/internal/memory"
	"github.com/lilong555/tradingagent/internal/models"
)

// Deps bundles everything a node constructor needs. One instance is built
// per TradingAgentsGraph and passed by pointer; nothing reads globals.
type Deps struct {
	Cfg     *config.Config
	Models  *Models
	Toolkit *dataflows.Toolkit
	Banks   *memory.Banks
}

// CurrentSituation is the text the memory banks are keyed on: the four
// analyst reports in a fixed order.
func CurrentSituation(state *models.TradingState) string {
	return strings.Join([]string{
		state.MarketReport,
		state.SentimentReport,
		state.NewsReport,
		state.FundamentalsReport,
	}, "\n\n")
}

// RetrieveMemories queries a bank for past lessons and renders them for a
// prompt. Retrieval failures degrade to the no-memories text: a missing
// embedding backend must not break a debate turn.
func RetrieveMemories(ctx context.Context, store memory.Store, situation string, nMatches int) string {
	if store == nil {
		return "No past memories found."
	}
	matches, err := store.Query(ctx, situation, nMatches)
	if err != nil {
		logger.Warn().Err(err).Str("bank", store.Name()).Msg("memory retrieval failed")
		return "No past memories found."
	}
	return FormatPastMemories(matches)
}

// FormatPastMemories renders retrieved recommendations as a numbered list.
func FormatPastMemories(matches []memory.Match) string {
	if len(matches) == 0 {
		return "No past memories found."
	}
	var sb strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, m.Recommendation)
	}
	return sb.String()
}
