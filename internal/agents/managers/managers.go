// Package managers builds the two judge nodes that close a debate phase:
// the research manager settles the bull/bear exchange into an investment
// plan, and the risk judge settles the risk discussion into the final trade
// decision. Both run on the deep-thinking model.
package managers

import (
	"github.com/lilong555/tradingagent/internal/logging"
)

var logger = logging.NewLogger("managers")

// memoryMatches per judge decision.
const memoryMatches = 2
