package cli

import (
	"context"
	"errors"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/lilong555/tradingagent/config"
)

// runInteractive drives the survey-based session loop: gather selections,
// run one analysis, offer another round.
func runInteractive(ctx context.Context, cfg *config.Config) error {
	DisplayWelcomeBanner()

	for {
		symbol, err := promptForTicker()
		if err != nil {
			return interactiveErr(err)
		}
		date, err := promptForDate()
		if err != nil {
			return interactiveErr(err)
		}
		analysts, err := promptForAnalysts()
		if err != nil {
			return interactiveErr(err)
		}
		rounds, err := promptForDebateRounds()
		if err != nil {
			return interactiveErr(err)
		}

		confirmed, err := promptForConfirmation(symbol, date, analystDisplayNames(analysts), rounds)
		if err != nil {
			return interactiveErr(err)
		}
		if confirmed {
			runCfg := *cfg
			runCfg.MaxDebateRounds = rounds
			if err := runAnalysis(ctx, &runCfg, symbol, date, analysts); err != nil {
				DisplayError(err)
			}
		}

		again, err := promptForAnotherRun()
		if err != nil {
			return interactiveErr(err)
		}
		if !again {
			DisplayInfo("Goodbye.")
			return nil
		}
	}
}

// interactiveErr treats ctrl-c in a prompt as a clean exit.
func interactiveErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		DisplayInfo("Interrupted.")
		return nil
	}
	return err
}
