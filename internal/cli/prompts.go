package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// promptForTicker asks for a stock symbol and normalizes it to upper case.
func promptForTicker() (string, error) {
	var ticker string
	prompt := &survey.Input{
		Message: "Stock ticker symbol (e.g. AAPL, MSFT, NVDA):",
	}

	err := survey.AskOne(prompt, &ticker, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(strings.ToUpper(val.(string)))
		if str == "" {
			return fmt.Errorf("ticker symbol cannot be empty")
		}
		if len(str) > 10 {
			return fmt.Errorf("ticker symbol too long")
		}
		if !tickerPattern.MatchString(str) {
			return fmt.Errorf("use letters, numbers, dots and hyphens only")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.ToUpper(ticker)), nil
}

// promptForDate asks for the trade date, defaulting to today.
func promptForDate() (string, error) {
	var dateStr string
	prompt := &survey.Input{
		Message: "Trade date (YYYY-MM-DD):",
		Default: time.Now().Format("2006-01-02"),
	}

	err := survey.AskOne(prompt, &dateStr, survey.WithValidator(func(val interface{}) error {
		str := strings.TrimSpace(val.(string))
		if str == "" {
			return nil
		}
		parsed, err := time.Parse("2006-01-02", str)
		if err != nil {
			return fmt.Errorf("invalid date format, use YYYY-MM-DD")
		}
		if parsed.After(time.Now().AddDate(0, 0, 1)) {
			return fmt.Errorf("trade date cannot be in the future")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		dateStr = time.Now().Format("2006-01-02")
	}
	return dateStr, nil
}

// promptForAnalysts asks which analysts to run. Selecting all returns nil
// so the pipeline takes its default chain.
func promptForAnalysts() ([]string, error) {
	var options []string
	for _, choice := range analystChoices {
		options = append(options, choice.display)
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message: "Select the analyst team:",
		Options: options,
		Default: options,
		Help:    "Space toggles a member, enter confirms.",
	}

	err := survey.AskOne(prompt, &selected, survey.WithValidator(func(val interface{}) error {
		answers, ok := val.([]survey.OptionAnswer)
		if !ok || len(answers) == 0 {
			return fmt.Errorf("select at least one analyst")
		}
		return nil
	}))
	if err != nil {
		return nil, err
	}
	if len(selected) == len(options) {
		return nil, nil
	}

	var nodes []string
	for _, name := range selected {
		for _, choice := range analystChoices {
			if name == choice.display {
				nodes = append(nodes, choice.node)
			}
		}
	}
	return nodes, nil
}

// promptForDebateRounds asks how many bull/bear rounds to run.
func promptForDebateRounds() (int, error) {
	options := []string{
		"Shallow (1 round) - quick take",
		"Medium (2 rounds) - balanced",
		"Deep (3 rounds) - thorough",
	}

	var selected string
	prompt := &survey.Select{
		Message: "Research debate depth:",
		Options: options,
		Default: options[0],
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return 0, err
	}

	switch {
	case strings.HasPrefix(selected, "Medium"):
		return 2, nil
	case strings.HasPrefix(selected, "Deep"):
		return 3, nil
	default:
		return 1, nil
	}
}

// promptForConfirmation shows the run summary and asks to proceed.
func promptForConfirmation(symbol, date, team string, rounds int) (bool, error) {
	fmt.Println()
	fmt.Println(sectionTitle("Run configuration"))
	fmt.Printf("Symbol:         %s\n", symbol)
	fmt.Printf("Trade date:     %s\n", date)
	fmt.Printf("Analyst team:   %s\n", team)
	fmt.Printf("Debate rounds:  %d\n", rounds)
	fmt.Println()

	var confirmed bool
	prompt := &survey.Confirm{
		Message: "Proceed with this analysis?",
		Default: true,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}

// promptForAnotherRun asks whether to start a new analysis after one ends.
func promptForAnotherRun() (bool, error) {
	var choice string
	prompt := &survey.Select{
		Message: "What next?",
		Options: []string{"Start a new analysis", "Exit"},
		Default: "Exit",
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return false, err
	}
	return choice == "Start a new analysis", nil
}
