// Package cli wires the cobra command tree around the trading pipeline:
// a one-shot analyze command, an interactive session, and config helpers.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lilong555/tradingagent/config"
	"github.com/lilong555/tradingagent/internal/logging"
)

const version = "1.0.0"

// NewRootCmd builds the command tree. Running the bare binary starts the
// interactive session.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "tradingagent",
		Short: "Multi-agent LLM trading analysis",
		Long: `tradingagent runs a team of LLM agents through market, sentiment, news and
fundamentals analysis, a bull/bear research debate, trade planning and a
three-way risk review, and distills the result into a BUY/SELL/HOLD decision.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				mgr, err := config.NewManager(
					config.WithConfigPath(path),
					config.WithInitialConfig(cfg),
				)
				if err != nil {
					return fmt.Errorf("load config %s: %w", path, err)
				}
				loaded := mgr.Get()
				*cfg = loaded
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
				cfg.LogLevel = "debug"
			}
			if err := cfg.EnsureDirectories(); err != nil {
				logging.Init(cfg.LogLevel, cfg.LogFormat)
				return fmt.Errorf("create directories: %w", err)
			}
			logFile := filepath.Join(cfg.ResultsDir, "tradingagent.log")
			if err := logging.InitWithFile(cfg.LogLevel, cfg.LogFormat, logFile); err != nil {
				logging.Init(cfg.LogLevel, cfg.LogFormat)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and graph tracing")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file")

	return rootCmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		date     string
		analysts []string
		offline  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "Run a trading analysis for one stock symbol",
		Long: `Run the full agent pipeline for a ticker on a given trade date.
Example: tradingagent analyze AAPL --date=2024-06-03 --analysts=market,news`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := strings.ToUpper(strings.TrimSpace(args[0]))
			if symbol == "" {
				return fmt.Errorf("symbol is required")
			}
			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if _, err := time.Parse("2006-01-02", date); err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
			}

			selected, err := resolveAnalysts(analysts)
			if err != nil {
				return err
			}
			if offline {
				cfg.OnlineTools = false
			}

			return runAnalysis(cmd.Context(), cfg, symbol, date, selected)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Trade date in YYYY-MM-DD format (defaults to today)")
	cmd.Flags().StringSliceVar(&analysts, "analysts", nil,
		"Analysts to run: market, social, news, fundamentals (defaults to all)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use cached local data instead of live APIs")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tradingagent v%s\n", version)
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init [PATH]",
		Short: "Write the current configuration to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			mgr, err := config.NewManager(
				config.WithConfigPath(path),
				config.WithInitialConfig(cfg),
			)
			if err != nil {
				return err
			}
			DisplaySuccess("Configuration written to " + mgr.Path())
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

func showConfig(cfg *config.Config) {
	fmt.Println(sectionTitle("Configuration"))
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("Deep Think Model:     %s\n", cfg.DeepThinkLLM)
	fmt.Printf("Quick Think Model:    %s\n", cfg.QuickThinkLLM)
	fmt.Printf("Backend URL:          %s\n", cfg.BackendURL)
	fmt.Printf("Embedding Model:      %s\n", cfg.ResolveEmbeddingModel())
	fmt.Println()
	fmt.Printf("Max Debate Rounds:    %d\n", cfg.MaxDebateRounds)
	fmt.Printf("Max Risk Rounds:      %d\n", cfg.MaxRiskDiscussRounds)
	fmt.Printf("Max Recursion Limit:  %d\n", cfg.MaxRecurLimit)
	fmt.Println()
	fmt.Printf("Memory Backend:       %s\n", cfg.MemoryBackend)
	fmt.Printf("Online Tools:         %t\n", cfg.OnlineTools)
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Graph Debug URL:      http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Println()

	fmt.Println(sectionTitle("API Credentials"))
	fmt.Printf("OpenAI API:           %s\n", configuredMark(cfg.OpenAIAPIKey != ""))
	fmt.Printf("DeepSeek API:         %s\n", configuredMark(cfg.DeepSeekAPIKey != ""))
	fmt.Printf("Finnhub API:          %s\n", configuredMark(cfg.FinnhubAPIKey != ""))
	fmt.Printf("Reddit API:           %s\n", configuredMark(cfg.RedditClientID != "" && cfg.RedditSecret != ""))
	fmt.Printf("Longport API:         %s\n", configuredMark(cfg.LongportAppKey != "" && cfg.LongportAccessToken != ""))
}

func validateConfig(cfg *config.Config) error {
	fmt.Println(sectionTitle("Validating configuration"))

	if err := cfg.Validate(); err != nil {
		DisplayError(err)
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		DisplayError(err)
		return err
	}
	DisplaySuccess("Directories and core settings are valid")

	var warnings []string
	if cfg.OpenAIAPIKey == "" && cfg.LLMProvider == "openai" {
		warnings = append(warnings, "OPENAI_API_KEY is not set")
	}
	if cfg.DeepSeekAPIKey == "" && cfg.LLMProvider == "deepseek" {
		warnings = append(warnings, "DEEPSEEK_API_KEY is not set")
	}
	if cfg.OnlineTools {
		if cfg.FinnhubAPIKey == "" {
			warnings = append(warnings, "Finnhub API key missing, news and insider tools will fail online")
		}
		if cfg.RedditClientID == "" || cfg.RedditSecret == "" {
			warnings = append(warnings, "Reddit credentials missing, social tools will fail online")
		}
	}

	if len(warnings) == 0 {
		DisplaySuccess("Configuration validation completed")
		return nil
	}
	for _, w := range warnings {
		DisplayWarning(w)
	}
	fmt.Printf("\nValidation completed with %d warnings. Run offline (--offline) or set the missing keys.\n", len(warnings))
	return nil
}
