package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/debug"
	"github.com/lilong555/tradingagent/internal/graph"
)

// analystChoices maps the CLI's short analyst names to graph node names,
// in pipeline order.
var analystChoices = []struct {
	short   string
	display string
	node    string
}{
	{"market", consts.Agent_MarketAnalyst, consts.MarketAnalyst},
	{"social", consts.Agent_SocialAnalyst, consts.SocialMediaAnalyst},
	{"news", consts.Agent_NewsAnalyst, consts.NewsAnalyst},
	{"fundamentals", consts.Agent_FundamentalsAnalyst, consts.FundamentalsAnalyst},
}

// resolveAnalysts turns --analysts values into node names. An empty list
// selects the whole team.
func resolveAnalysts(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var nodes []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, choice := range analystChoices {
			if key == choice.short || key == choice.node {
				nodes = append(nodes, choice.node)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown analyst %q, valid values: market, social, news, fundamentals", name)
		}
	}
	return nodes, nil
}

// runAnalysis executes one propagation and renders the outcome.
func runAnalysis(ctx context.Context, cfg *config.Config, symbol, date string, analysts []string) error {
	if cfg.EinoDebugEnabled {
		dbg := debug.NewGraphDebugger(cfg)
		if err := dbg.Start(ctx); err != nil {
			DisplayWarning(fmt.Sprintf("graph debug server unavailable: %v", err))
		} else if url := dbg.URL(); url != "" {
			DisplayInfo("Graph debug server listening at " + url)
		}
	}

	DisplayAnalysisHeader(symbol, date, analystDisplayNames(analysts))
	started := time.Now()

	g, err := graph.NewTradingAgentsGraph(ctx, analysts, cfg.Debug, cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer g.Close()

	final, decision, err := g.Propagate(ctx, symbol, date)
	if err != nil {
		return err
	}

	DisplayDecision(decision, time.Since(started))
	DisplayReportIndex(cfg.ResultsDir, final)
	return nil
}

// analystDisplayNames renders the selected team for the header. nil means
// the full team.
func analystDisplayNames(nodes []string) string {
	if len(nodes) == 0 {
		var all []string
		for _, choice := range analystChoices {
			all = append(all, choice.display)
		}
		return strings.Join(all, ", ")
	}
	var names []string
	for _, node := range nodes {
		for _, choice := range analystChoices {
			if node == choice.node {
				names = append(names, choice.display)
			}
		}
	}
	return strings.Join(names, ", ")
}
