// Package processing distills the risk judge's prose into a structured
// trade decision. The explicit FINAL TRANSACTION PROPOSAL marker wins; only
// markerless text falls back to keyword scoring.
package processing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/models"
)

// proposalMarker captures the mandated closing tag, tolerating markdown
// emphasis around the action word.
var proposalMarker = regexp.MustCompile(`(?i)FINAL\s+TRANSACTION\s+PROPOSAL:\s*\**\s*(BUY|SELL|HOLD)`)

var (
	buyWords  = regexp.MustCompile(`\b(buy|purchase|long|bullish|accumulate|undervalued|oversold)\b`)
	sellWords = regexp.MustCompile(`\b(sell|short|bearish|divest|exit|overvalued|overbought)\b`)
	holdWords = regexp.MustCompile(`\b(hold|maintain|neutral|wait|sideways)\b`)
)

var pricePatterns = map[string]*regexp.Regexp{
	"entry":  regexp.MustCompile(`(?i)entry[^$\d]*\$?(\d+(?:\.\d+)?)`),
	"stop":   regexp.MustCompile(`(?i)stop[- ]?loss[^$\d]*\$?(\d+(?:\.\d+)?)`),
	"target": regexp.MustCompile(`(?i)(?:target|take[- ]?profit)[^$\d]*\$?(\d+(?:\.\d+)?)`),
}

// ExtractSignal returns the trade action stated in text. Later markers
// override earlier ones, since debate turns quote each other; text with no
// marker at all is scored by keyword counts and defaults to HOLD.
func ExtractSignal(text string) string {
	if matches := proposalMarker.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		return strings.ToUpper(matches[len(matches)-1][1])
	}
	return scoreKeywords(text)
}

func scoreKeywords(text string) string {
	lower := strings.ToLower(text)
	buy := len(buyWords.FindAllString(lower, -1))
	sell := len(sellWords.FindAllString(lower, -1))
	hold := len(holdWords.FindAllString(lower, -1))

	switch {
	case buy > sell && buy > hold:
		return consts.ActionBuy
	case sell > buy && sell > hold:
		return consts.ActionSell
	default:
		return consts.ActionHold
	}
}

// confidence rates how unambiguous the decision text is: the share of
// action-bearing words that agree with the extracted action. A marker with
// no dissenting keywords rates 1.0; markerless mixed text rates lower.
func confidence(text, action string) float64 {
	lower := strings.ToLower(text)
	buy := len(buyWords.FindAllString(lower, -1))
	sell := len(sellWords.FindAllString(lower, -1))
	hold := len(holdWords.FindAllString(lower, -1))
	total := buy + sell + hold
	if total == 0 {
		return 0.5
	}

	var agreeing int
	switch action {
	case consts.ActionBuy:
		agreeing = buy
	case consts.ActionSell:
		agreeing = sell
	default:
		agreeing = hold
	}
	c := float64(agreeing) / float64(total)
	if proposalMarker.MatchString(text) && c < 0.5 {
		c = 0.5
	}
	return c
}

func extractPrice(text, kind string) float64 {
	pattern := pricePatterns[kind]
	if pattern == nil {
		return 0
	}
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// ProcessSignal distills the final trade decision into a structured record.
// Only the risk judge's text is read; the debate transcript would drown the
// verdict in quoted arguments.
func ProcessSignal(state *models.TradingState) *models.TradingDecision {
	text := state.FinalTradeDecision
	action := ExtractSignal(text)

	return &models.TradingDecision{
		Symbol:     state.CompanyOfInterest,
		Date:       state.TradeDate,
		Action:     action,
		Confidence: confidence(text, action),
		Reasoning:  reasoning(text),
		EntryPrice: extractPrice(text, "entry"),
		StopLoss:   extractPrice(text, "stop"),
		TakeProfit: extractPrice(text, "target"),
	}
}

// reasoning keeps the first few sentences of the verdict as a short summary.
func reasoning(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	sentences := strings.SplitAfter(text, ". ")
	if len(sentences) > 3 {
		sentences = sentences[:3]
	}
	return strings.TrimSpace(strings.Join(sentences, ""))
}
