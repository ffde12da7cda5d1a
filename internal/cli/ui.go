package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lilong555/tradingagent/consts"
	"github.com/lilong555/tradingagent/internal/models"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 2)

	decisionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(1, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	buyStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	sellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	holdStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
)

// DisplayWelcomeBanner prints the session banner.
func DisplayWelcomeBanner() {
	fmt.Println(bannerStyle.Render("TradingAgent - Multi-Agent LLM Trading Analysis"))
	fmt.Println(infoStyle.Render("Analyst team, research debate, trade planning and risk review in one pipeline."))
	fmt.Println()
}

// DisplayAnalysisHeader prints the run header before the pipeline starts.
func DisplayAnalysisHeader(symbol, date, team string) {
	header := fmt.Sprintf("Analyzing %s on %s | Team: %s", symbol, date, team)
	fmt.Println(headerStyle.Render(header))
}

// DisplayDecision renders the distilled trading decision.
func DisplayDecision(d *models.TradingDecision, elapsed time.Duration) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Decision for %s on %s\n\n", d.Symbol, d.Date)
	fmt.Fprintf(&sb, "Action:      %s\n", actionStyle(d.Action).Render(d.Action))
	fmt.Fprintf(&sb, "Confidence:  %.0f%%\n", d.Confidence*100)
	if d.EntryPrice > 0 {
		fmt.Fprintf(&sb, "Entry:       %.2f\n", d.EntryPrice)
	}
	if d.StopLoss > 0 {
		fmt.Fprintf(&sb, "Stop loss:   %.2f\n", d.StopLoss)
	}
	if d.TakeProfit > 0 {
		fmt.Fprintf(&sb, "Take profit: %.2f\n", d.TakeProfit)
	}
	if d.Reasoning != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Reasoning)
	}
	fmt.Fprintf(&sb, "\nCompleted in %s", elapsed.Round(time.Second))

	fmt.Println()
	fmt.Println(decisionStyle.Render(sb.String()))
}

// DisplayReportIndex lists the markdown reports the run wrote to disk.
func DisplayReportIndex(resultsDir string, state *models.TradingState) {
	reportDir := filepath.Join(resultsDir, state.CompanyOfInterest, state.TradeDate, "reports")
	entries, err := os.ReadDir(reportDir)
	if err != nil || len(entries) == 0 {
		return
	}

	fmt.Println()
	fmt.Println(sectionTitle("Reports"))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		fmt.Printf("  %s\n", filepath.Join(reportDir, entry.Name()))
	}
}

// DisplayError prints an error line.
func DisplayError(err error) {
	fmt.Println(errorStyle.Render("Error: " + err.Error()))
}

// DisplayWarning prints a warning line.
func DisplayWarning(message string) {
	fmt.Println(warnStyle.Render("Warning: " + message))
}

// DisplayInfo prints an informational line.
func DisplayInfo(message string) {
	fmt.Println(infoStyle.Render(message))
}

// DisplaySuccess prints a success line.
func DisplaySuccess(message string) {
	fmt.Println(successStyle.Render(message))
}

func sectionTitle(title string) string {
	return sectionStyle.Render(title)
}

func actionStyle(action string) lipgloss.Style {
	switch action {
	case consts.ActionBuy:
		return buyStyle
	case consts.ActionSell:
		return sellStyle
	default:
		return holdStyle
	}
}

func configuredMark(ok bool) string {
	if ok {
		return successStyle.Render("configured")
	}
	return warnStyle.Render("not configured")
}
