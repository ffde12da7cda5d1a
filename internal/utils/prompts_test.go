package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPromptForEveryRole(t *testing.T) {
	paths := []string{
		"analysts/market_analyst",
		"analysts/social_analyst",
		"analysts/news_analyst",
		"analysts/fundamentals_analyst",
		"researchers/bull_researcher",
		"researchers/bear_researcher",
		"managers/research_manager",
		"managers/risk_manager",
		"risk_mgmt/risky_debate",
		"risk_mgmt/safe_debate",
		"risk_mgmt/neutral_debate",
		"trader/trader",
		"reflection/reflector",
	}
	for _, path := range paths {
		content, err := LoadPrompt(path)
		if err != nil {
			t.Fatalf("LoadPrompt(%q) failed: %v", path, err)
		}
		if strings.TrimSpace(content) == "" {
			t.Fatalf("LoadPrompt(%q) returned empty content", path)
		}
	}
}

func TestLoadPromptUnknownPath(t *testing.T) {
	if _, err := LoadPrompt("analysts/quant_analyst"); err == nil {
		t.Fatal("expected error for unknown prompt path")
	}
}

func TestLoadPromptWithContextSubstitutesPlaceholders(t *testing.T) {
	content, err := LoadPromptWithContext("managers/risk_manager", map[string]string{
		"TraderPlan":    "buy 100 shares",
		"PastMemoryStr": "cut losses early",
		"History":       "Risky Analyst: upside is huge",
	})
	if err != nil {
		t.Fatalf("LoadPromptWithContext failed: %v", err)
	}
	for _, want := range []string{"buy 100 shares", "cut losses early", "Risky Analyst: upside is huge"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected substituted prompt to contain %q", want)
		}
	}
	if strings.Contains(content, "{{.") {
		t.Fatalf("unsubstituted placeholder left in prompt: %s", content)
	}
}

func TestDebatePromptsCarryTemplateVariables(t *testing.T) {
	// These templates are formatted with single-brace variables at the call
	// site; a renamed placeholder would silently break the debate context.
	cases := map[string][]string{
		"researchers/bull_researcher": {"{market_research_report}", "{sentiment_report}", "{news_report}", "{fundamentals_report}", "{history}", "{current_response}", "{past_memory_str}"},
		"researchers/bear_researcher": {"{market_research_report}", "{sentiment_report}", "{news_report}", "{fundamentals_report}", "{history}", "{current_response}", "{past_memory_str}"},
		"risk_mgmt/risky_debate":      {"{trader_decision}", "{history}", "{current_safe_response}", "{current_neutral_response}"},
		"risk_mgmt/safe_debate":       {"{trader_decision}", "{history}", "{current_risky_response}", "{current_neutral_response}"},
		"risk_mgmt/neutral_debate":    {"{trader_decision}", "{history}", "{current_risky_response}", "{current_safe_response}"},
		"trader/trader":               {"{past_memory_str}"},
	}
	for path, vars := range cases {
		content, err := LoadPrompt(path)
		if err != nil {
			t.Fatalf("LoadPrompt(%q) failed: %v", path, err)
		}
		for _, v := range vars {
			if !strings.Contains(content, v) {
				t.Fatalf("prompt %s is missing template variable %s", path, v)
			}
		}
	}
}

func TestWriteMarkdown(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "AAPL", "2024-06-03")
	if err := WriteMarkdown(dir, "market_report.md", "## Technical outlook\n"); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "market_report.md"))
	if err != nil {
		t.Fatalf("reading written report: %v", err)
	}
	if string(data) != "## Technical outlook\n" {
		t.Fatalf("unexpected report content: %q", string(data))
	}
}
