package config

import (
	"strings"

	"github.com/spf13/viper"

	"labparse/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Pipeline PipelineConfig
	Catalog  CatalogConfig
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Environment  string   `mapstructure:"environment"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	MaxBodyBytes int64    `mapstructure:"max_body_bytes"`
}

// ProviderConfig holds settings for a hosted LLM provider.
type ProviderConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
}

// LocalConfig holds settings for a self-hosted model server.
type LocalConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// AIConfig holds every AI provider's settings. Resolve picks the one in use.
type AIConfig struct {
	// Provider forces a specific backend; empty means resolve by priority.
	Provider  string         `mapstructure:"provider"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Local     LocalConfig    `mapstructure:"local"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
}

// AIParserConfig is the resolved configuration of the single AI provider
// used by the process.
type AIParserConfig struct {
	Provider domain.AIProvider
	APIKey   string
	Model    string
	Endpoint string
}

// Resolve selects the AI provider: an explicit Provider wins, otherwise
// OpenAI if it has a key, then Anthropic if it has a key, then the local
// model if enabled, then Gemini if it has a key. It returns nil when AI
// extraction is disabled.
func (c *AIConfig) Resolve() *AIParserConfig {
	if c.Provider != "" {
		return c.forProvider(domain.AIProvider(strings.ToLower(c.Provider)))
	}
	switch {
	case c.OpenAI.APIKey != "":
		return c.forProvider(domain.ProviderOpenAI)
	case c.Anthropic.APIKey != "":
		return c.forProvider(domain.ProviderAnthropic)
	case c.Local.Enabled:
		return c.forProvider(domain.ProviderLocal)
	case c.Gemini.APIKey != "":
		return c.forProvider(domain.ProviderGemini)
	}
	return nil
}

func (c *AIConfig) forProvider(p domain.AIProvider) *AIParserConfig {
	switch p {
	case domain.ProviderOpenAI:
		return hosted(p, c.OpenAI)
	case domain.ProviderAnthropic:
		return hosted(p, c.Anthropic)
	case domain.ProviderGemini:
		return hosted(p, c.Gemini)
	case domain.ProviderLocal:
		return &AIParserConfig{Provider: p, Model: c.Local.Model, Endpoint: c.Local.Endpoint}
	default:
		// Unknown names still resolve so the factory can report them.
		return &AIParserConfig{Provider: p}
	}
}

func hosted(p domain.AIProvider, pc ProviderConfig) *AIParserConfig {
	return &AIParserConfig{Provider: p, APIKey: pc.APIKey, Model: pc.Model, Endpoint: pc.Endpoint}
}

// PipelineConfig holds settings the host applies around pipeline calls.
type PipelineConfig struct {
	AITimeoutSecs    int `mapstructure:"ai_timeout_secs"`
	BatchConcurrency int `mapstructure:"batch_concurrency"`
}

// CatalogConfig points at an optional spreadsheet replacing the built-in
// indicator catalog.
type CatalogConfig struct {
	XLSXPath string `mapstructure:"xlsx_path"`
}

// Load reads configuration from environment variables with the LABPARSE_
// prefix. Provider keys also accept their conventional variable names.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LABPARSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("server.max_body_bytes", 2<<20)

	// AI defaults
	v.SetDefault("ai.provider", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.local.enabled", false)
	v.SetDefault("ai.local.endpoint", "http://localhost:11434")
	v.SetDefault("ai.local.model", "llama3.1")

	// Pipeline defaults
	v.SetDefault("pipeline.ai_timeout_secs", 30)
	v.SetDefault("pipeline.batch_concurrency", 4)

	v.SetDefault("catalog.xlsx_path", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string][]string{
		"server.port":                {"LABPARSE_SERVER_PORT"},
		"server.environment":         {"LABPARSE_SERVER_ENVIRONMENT"},
		"server.cors_origins":        {"LABPARSE_SERVER_CORS_ORIGINS"},
		"server.max_body_bytes":      {"LABPARSE_SERVER_MAX_BODY_BYTES"},
		"ai.provider":                {"LABPARSE_AI_PROVIDER"},
		"ai.openai.api_key":          {"LABPARSE_AI_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"ai.openai.model":            {"LABPARSE_AI_OPENAI_MODEL", "OPENAI_MODEL"},
		"ai.openai.endpoint":         {"LABPARSE_AI_OPENAI_ENDPOINT"},
		"ai.anthropic.api_key":       {"LABPARSE_AI_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"ai.anthropic.model":         {"LABPARSE_AI_ANTHROPIC_MODEL", "ANTHROPIC_MODEL"},
		"ai.anthropic.endpoint":      {"LABPARSE_AI_ANTHROPIC_ENDPOINT"},
		"ai.local.enabled":           {"LABPARSE_AI_LOCAL_ENABLED", "USE_LOCAL_LLM"},
		"ai.local.endpoint":          {"LABPARSE_AI_LOCAL_ENDPOINT", "LOCAL_LLM_URL"},
		"ai.local.model":             {"LABPARSE_AI_LOCAL_MODEL", "LOCAL_LLM_MODEL"},
		"ai.gemini.api_key":          {"LABPARSE_AI_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"ai.gemini.model":            {"LABPARSE_AI_GEMINI_MODEL"},
		"ai.gemini.endpoint":         {"LABPARSE_AI_GEMINI_ENDPOINT"},
		"pipeline.ai_timeout_secs":   {"LABPARSE_PIPELINE_AI_TIMEOUT_SECS"},
		"pipeline.batch_concurrency": {"LABPARSE_PIPELINE_BATCH_CONCURRENCY"},
		"catalog.xlsx_path":          {"LABPARSE_CATALOG_XLSX_PATH"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
		Environment:  v.GetString("server.environment"),
		CORSOrigins:  splitCSV(v.GetString("server.cors_origins")),
		MaxBodyBytes: v.GetInt64("server.max_body_bytes"),
	}
	cfg.AI = AIConfig{
		Provider: v.GetString("ai.provider"),
		OpenAI: ProviderConfig{
			APIKey:   v.GetString("ai.openai.api_key"),
			Model:    v.GetString("ai.openai.model"),
			Endpoint: v.GetString("ai.openai.endpoint"),
		},
		Anthropic: ProviderConfig{
			APIKey:   v.GetString("ai.anthropic.api_key"),
			Model:    v.GetString("ai.anthropic.model"),
			Endpoint: v.GetString("ai.anthropic.endpoint"),
		},
		Local: LocalConfig{
			Enabled:  v.GetBool("ai.local.enabled"),
			Endpoint: v.GetString("ai.local.endpoint"),
			Model:    v.GetString("ai.local.model"),
		},
		Gemini: ProviderConfig{
			APIKey:   v.GetString("ai.gemini.api_key"),
			Model:    v.GetString("ai.gemini.model"),
			Endpoint: v.GetString("ai.gemini.endpoint"),
		},
	}
	cfg.Pipeline = PipelineConfig{
		AITimeoutSecs:    v.GetInt("pipeline.ai_timeout_secs"),
		BatchConcurrency: v.GetInt("pipeline.batch_concurrency"),
	}
	cfg.Catalog = CatalogConfig{
		XLSXPath: v.GetString("catalog.xlsx_path"),
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
