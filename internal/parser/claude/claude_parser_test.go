package claude_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/parser/claude"
)

func newTestParser(serverURL, apiKey string) *claude.Parser {
	return claude.NewParserWithEndpoint(&config.AIParserConfig{
		Provider: domain.ProviderAnthropic,
		APIKey:   apiKey,
		Model:    "claude-test",
	}, serverURL)
}

func textResponse(text, stopReason string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"stop_reason": stopReason,
	}
}

func TestClaudeParser_Extract_ProseWrappedJSON(t *testing.T) {
	reply := "Вот результат:\n```json\n" +
		`{"studyType":null,"studyDate":"2024-01-05","laboratory":"Гемотест","doctor":null,"findings":"Норма {без отклонений}","indicators":[{"name":"Глюкоза","value":5.4,"unit":"ммоль/л","referenceMin":3.9,"referenceMax":6.1}]}` +
		"\n```\nЕсли нужно что-то ещё, дайте знать."

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-test", reqBody["model"])
		assert.Equal(t, parser.SystemPrompt(), reqBody["system"])
		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)

		_ = json.NewEncoder(w).Encode(textResponse(reply, "end_turn"))
	}))
	defer server.Close()

	report, err := newTestParser(server.URL, "test-key").Extract(context.Background(), "Глюкоза 5,4")

	require.NoError(t, err)
	assert.Equal(t, "Гемотест", *report.Laboratory)
	assert.Equal(t, "Норма {без отклонений}", *report.Findings)
	require.Len(t, report.Indicators, 1)
	assert.Equal(t, 5.4, report.Indicators[0].Value)
	assert.True(t, *report.Indicators[0].IsNormal)
}

func TestClaudeParser_Extract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    interface{}
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]string{"error": "invalid x-api-key"}, "status 401"},
		{"no content", http.StatusOK, map[string]interface{}{"content": []interface{}{}}, "empty response"},
		{"no json", http.StatusOK, textResponse("I cannot parse this report.", "end_turn"), "no JSON object"},
		{"max tokens", http.StatusOK, textResponse(`{"indicators":[`, "max_tokens"), "output truncated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			report, err := newTestParser(server.URL, "k").Extract(context.Background(), "text")

			assert.Nil(t, report)
			assert.ErrorIs(t, err, domain.ErrExtraction)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClaudeParser_Extract_MissingKey(t *testing.T) {
	p := claude.NewParser(&config.AIParserConfig{Provider: domain.ProviderAnthropic})

	_, err := p.Extract(context.Background(), "text")

	assert.ErrorIs(t, err, domain.ErrExtraction)
	assert.Contains(t, err.Error(), "missing API key")
}
