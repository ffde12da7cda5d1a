package consts

// Display names used in debate transcripts and reports.
const (
	Agent_MarketAnalyst       = "Market Analyst"
	Agent_SocialAnalyst       = "Social Analyst"
	Agent_NewsAnalyst         = "News Analyst"
	Agent_FundamentalsAnalyst = "Fundamentals Analyst"

	Agent_BullResearcher  = "Bull Researcher"
	Agent_BearResearcher  = "Bear Researcher"
	Agent_ResearchManager = "Research Manager"

	Agent_Trader = "Trader"

	Agent_RiskyAnalyst   = "Risky Analyst"
	Agent_NeutralAnalyst = "Neutral Analyst"
	Agent_SafeAnalyst    = "Safe Analyst"
	Agent_RiskJudge      = "Risk Judge"
)

// Trade actions produced by signal extraction.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)
