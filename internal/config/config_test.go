package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/config"
	"labparse/internal/domain"
)

func TestAIConfig_Resolve_Priority(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AIConfig
		want domain.AIProvider
	}{
		{
			name: "openai first",
			cfg: config.AIConfig{
				OpenAI:    config.ProviderConfig{APIKey: "sk"},
				Anthropic: config.ProviderConfig{APIKey: "ant"},
				Local:     config.LocalConfig{Enabled: true},
			},
			want: domain.ProviderOpenAI,
		},
		{
			name: "anthropic when no openai key",
			cfg: config.AIConfig{
				Anthropic: config.ProviderConfig{APIKey: "ant"},
				Local:     config.LocalConfig{Enabled: true},
			},
			want: domain.ProviderAnthropic,
		},
		{
			name: "local flag",
			cfg: config.AIConfig{
				Local:  config.LocalConfig{Enabled: true, Endpoint: "http://gpu:11434", Model: "qwen2.5"},
				Gemini: config.ProviderConfig{APIKey: "g"},
			},
			want: domain.ProviderLocal,
		},
		{
			name: "gemini last",
			cfg:  config.AIConfig{Gemini: config.ProviderConfig{APIKey: "g"}},
			want: domain.ProviderGemini,
		},
		{
			name: "explicit override",
			cfg: config.AIConfig{
				Provider:  "Anthropic",
				OpenAI:    config.ProviderConfig{APIKey: "sk"},
				Anthropic: config.ProviderConfig{APIKey: "ant", Model: "claude-x"},
			},
			want: domain.ProviderAnthropic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.Resolve()
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Provider)
		})
	}
}

func TestAIConfig_Resolve_CarriesProviderSettings(t *testing.T) {
	cfg := config.AIConfig{
		Local: config.LocalConfig{Enabled: true, Endpoint: "http://gpu:11434", Model: "qwen2.5"},
	}

	got := cfg.Resolve()

	require.NotNil(t, got)
	assert.Equal(t, "http://gpu:11434", got.Endpoint)
	assert.Equal(t, "qwen2.5", got.Model)
	assert.Empty(t, got.APIKey)
}

func TestAIConfig_Resolve_Disabled(t *testing.T) {
	cfg := config.AIConfig{
		OpenAI: config.ProviderConfig{Model: "gpt-4o"},
		Local:  config.LocalConfig{Endpoint: "http://localhost:11434"},
	}

	assert.Nil(t, cfg.Resolve())
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "USE_LOCAL_LLM",
		"LABPARSE_AI_PROVIDER", "LABPARSE_AI_OPENAI_API_KEY", "LABPARSE_AI_ANTHROPIC_API_KEY",
		"LABPARSE_AI_LOCAL_ENABLED", "LABPARSE_AI_GEMINI_API_KEY",
		"LABPARSE_SERVER_PORT", "LABPARSE_SERVER_CORS_ORIGINS", "LABPARSE_SERVER_MAX_BODY_BYTES",
		"LABPARSE_PIPELINE_AI_TIMEOUT_SECS", "LABPARSE_PIPELINE_BATCH_CONCURRENCY", "LABPARSE_AI_OPENAI_MODEL",
		"OPENAI_MODEL", "LABPARSE_AI_LOCAL_ENDPOINT", "LOCAL_LLM_URL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.Server.CORSOrigins)
	assert.EqualValues(t, 2<<20, cfg.Server.MaxBodyBytes)
	assert.Equal(t, 30, cfg.Pipeline.AITimeoutSecs)
	assert.Equal(t, 4, cfg.Pipeline.BatchConcurrency)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.OpenAI.Model)
	assert.Equal(t, "http://localhost:11434", cfg.AI.Local.Endpoint)
	assert.Nil(t, cfg.AI.Resolve())
}

func TestLoad_ConventionalEnvNames(t *testing.T) {
	t.Setenv("LABPARSE_AI_PROVIDER", "")
	t.Setenv("LABPARSE_AI_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LABPARSE_AI_ANTHROPIC_API_KEY", "")
	t.Setenv("LABPARSE_AI_ANTHROPIC_MODEL", "")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-custom")
	t.Setenv("LABPARSE_PIPELINE_AI_TIMEOUT_SECS", "15")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "ant-key", cfg.AI.Anthropic.APIKey)
	assert.Equal(t, "claude-custom", cfg.AI.Anthropic.Model)
	assert.Equal(t, 15, cfg.Pipeline.AITimeoutSecs)
	assert.Equal(t, domain.ProviderAnthropic, cfg.AI.Resolve().Provider)
}
