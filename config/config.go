package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every knob the pipeline reads. A single instance is built at
// startup and handed by pointer into each component; nothing reads globals.
type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	LLMProvider          string `json:"llm_provider"`
	DeepThinkLLM         string `json:"deep_think_llm"`
	QuickThinkLLM        string `json:"quick_think_llm"`
	BackendURL           string `json:"backend_url"`
	MaxDebateRounds      int    `json:"max_debate_rounds"`
	MaxRiskDiscussRounds int    `json:"max_risk_rounds"`
	MaxRecurLimit        int    `json:"max_recursion_limit"`
	OnlineTools          bool   `json:"online_tools"`
	Debug                bool   `json:"debug"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// Shared retry policy for outbound data calls. Delay grows linearly:
	// attempt n sleeps BaseDelay * n.
	RetryMaxAttempts int           `json:"retry_max_attempts"`
	RetryBaseDelay   time.Duration `json:"retry_base_delay"`

	CacheEnabled bool `json:"cache_enabled"`

	// Memory backend: "memory" keeps embeddings in process, "postgres" uses
	// pgvector over PostgresDSN.
	MemoryBackend    string `json:"memory_backend"`
	PostgresDSN      string `json:"postgres_dsn"`
	MemoryMetric     string `json:"memory_metric"`
	EmbeddingModel   string `json:"embedding_model"`
	EmbeddingBaseURL string `json:"embedding_base_url"`

	// Eino visual debug server
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	// Longport API configuration
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// Model provider API keys
	OpenAIAPIKey   string `json:"openai_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Market/social data API keys
	FinnhubAPIKey   string `json:"finnhub_api_key"`
	RedditClientID  string `json:"reddit_client_id"`
	RedditSecret    string `json:"reddit_secret"`
	RedditUserAgent string `json:"reddit_user_agent"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot builds defaults under an explicit root directory and
// does not consult the environment.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir:   root,
		ResultsDir:   filepath.Join(root, "results"),
		DataDir:      filepath.Join(root, "data"),
		DataCacheDir: filepath.Join(root, "data", "cache"),

		LLMProvider:   "openai",
		DeepThinkLLM:  "o4-mini",
		QuickThinkLLM: "gpt-4o-mini",
		BackendURL:    "https://api.openai.com/v1",

		MaxDebateRounds:      1,
		MaxRiskDiscussRounds: 1,
		MaxRecurLimit:        100,
		OnlineTools:          true,
		Debug:                false,

		LogLevel:  "info",
		LogFormat: "console",

		RetryMaxAttempts: 5,
		RetryBaseDelay:   2 * time.Second,

		CacheEnabled: true,

		MemoryBackend:  "memory",
		MemoryMetric:   "cosine",
		EmbeddingModel: "text-embedding-3-small",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,

		RedditUserAgent: "tradingagent/1.0",
	}
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("DEEP_THINK_LLM"); val != "" {
		c.DeepThinkLLM = val
	}
	if val := os.Getenv("QUICK_THINK_LLM"); val != "" {
		c.QuickThinkLLM = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("ONLINE_TOOLS"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.OnlineTools = enabled
		}
	}

	if val := os.Getenv("MAX_DEBATE_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxDebateRounds = v
		}
	}
	if val := os.Getenv("MAX_RISK_ROUNDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRiskDiscussRounds = v
		}
	}
	if val := os.Getenv("MAX_RECURSION_LIMIT"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxRecurLimit = v
		}
	}

	if val := os.Getenv("RETRY_MAX_ATTEMPTS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RetryMaxAttempts = v
		}
	}
	if val := os.Getenv("RETRY_BASE_DELAY_MS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RetryBaseDelay = time.Duration(v) * time.Millisecond
		}
	}

	if val := os.Getenv("TRADINGAGENT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("MEMORY_BACKEND"); val != "" {
		c.MemoryBackend = val
	}
	if val := os.Getenv("POSTGRES_DSN"); val != "" {
		c.PostgresDSN = val
	}
	if val := os.Getenv("MEMORY_METRIC"); val != "" {
		c.MemoryMetric = val
	}
	if val := os.Getenv("EMBEDDING_MODEL"); val != "" {
		c.EmbeddingModel = val
	}
	if val := os.Getenv("EMBEDDING_BASE_URL"); val != "" {
		c.EmbeddingBaseURL = val
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("TRADINGAGENT_FINNHUB_API_KEY"); val != "" {
		c.FinnhubAPIKey = val
	}
	if val := os.Getenv("TRADINGAGENT_REDDIT_CLIENT_ID"); val != "" {
		c.RedditClientID = val
	}
	if val := os.Getenv("TRADINGAGENT_REDDIT_SECRET"); val != "" {
		c.RedditSecret = val
	}
	if val := os.Getenv("REDDIT_USER_AGENT"); val != "" {
		c.RedditUserAgent = val
	}
}

// Validate reports configuration-class errors. These abort the run: nothing
// downstream can degrade gracefully from a wrong provider or a zero round
// budget.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectDir) == "" {
		return fmt.Errorf("config: project_dir is required")
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		return fmt.Errorf("config: results_dir is required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: data_dir is required")
	}
	if strings.TrimSpace(c.DataCacheDir) == "" {
		return fmt.Errorf("config: data_cache_dir is required")
	}

	switch c.LLMProvider {
	case "openai", "deepseek", "ollama", "openrouter":
	default:
		return fmt.Errorf("config: unsupported llm_provider %q", c.LLMProvider)
	}

	if c.MaxDebateRounds < 1 {
		return fmt.Errorf("config: max_debate_rounds must be >= 1, got %d", c.MaxDebateRounds)
	}
	if c.MaxRiskDiscussRounds < 1 {
		return fmt.Errorf("config: max_risk_rounds must be >= 1, got %d", c.MaxRiskDiscussRounds)
	}
	if c.MaxRecurLimit < 1 {
		return fmt.Errorf("config: max_recursion_limit must be >= 1, got %d", c.MaxRecurLimit)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("config: retry_max_attempts must be >= 1, got %d", c.RetryMaxAttempts)
	}
	if c.RetryBaseDelay < 0 {
		return fmt.Errorf("config: retry_base_delay must not be negative")
	}

	switch c.MemoryBackend {
	case "memory":
	case "postgres":
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("config: postgres memory backend requires postgres_dsn")
		}
	default:
		return fmt.Errorf("config: unsupported memory_backend %q", c.MemoryBackend)
	}

	switch c.MemoryMetric {
	case "cosine", "inner_product", "l2":
	default:
		return fmt.Errorf("config: unsupported memory_metric %q", c.MemoryMetric)
	}

	return nil
}

// ResolveEmbeddingBaseURL picks the embeddings endpoint: explicit override
// wins, an Ollama backend keeps its own host, everything else goes to OpenAI.
func (c *Config) ResolveEmbeddingBaseURL() string {
	if c.EmbeddingBaseURL != "" {
		return c.EmbeddingBaseURL
	}
	if c.LLMProvider == "ollama" && c.BackendURL != "" {
		return c.BackendURL
	}
	return "https://api.openai.com/v1"
}

// ResolveEmbeddingModel mirrors the embedding model choice to the provider:
// local Ollama backends default to nomic-embed-text.
func (c *Config) ResolveEmbeddingModel() string {
	if c.EmbeddingModel != "" && c.EmbeddingModel != "text-embedding-3-small" {
		return c.EmbeddingModel
	}
	if c.LLMProvider == "ollama" {
		return "nomic-embed-text"
	}
	if c.EmbeddingModel != "" {
		return c.EmbeddingModel
	}
	return "text-embedding-3-small"
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
