package consts

// Graph node names. Routers write one of these into state.Goto and the
// orchestrator branch dispatches on it.
const (
	MarketAnalyst       = "market_analyst"
	SocialMediaAnalyst  = "social_media_analyst"
	NewsAnalyst         = "news_analyst"
	FundamentalsAnalyst = "fundamentals_analyst"

	BullResearcher  = "bull_researcher"
	BearResearcher  = "bear_researcher"
	ResearchManager = "research_manager"

	Trader = "trader"

	RiskyAnalyst   = "risky_analyst"
	SafeAnalyst    = "safe_analyst"
	NeutralAnalyst = "neutral_analyst"
	RiskJudge      = "risk_judge"

	Propagator = "propagator"
	Finalize   = "finalize"
)

// AnalystOrder is the fixed chain the analyst phase walks through. A run may
// select a subset; routing skips ahead to the next selected entry.
var AnalystOrder = []string{
	MarketAnalyst,
	SocialMediaAnalyst,
	NewsAnalyst,
	FundamentalsAnalyst,
}
