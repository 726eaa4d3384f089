package gemini_test

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
	"labparse/internal/parser/gemini"
)

func geminiResponse(text, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": finishReason,
			},
		},
	}
}

func TestGeminiParser_Extract_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gem-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Contains(t, reqBody, "systemInstruction")
		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])

		_ = json.NewEncoder(w).Encode(geminiResponse(
			`{"studyType":null,"studyDate":null,"laboratory":null,"doctor":null,"findings":null,"indicators":[{"name":"WBC","value":"11,2","unit":"10^9/л","referenceMin":4,"referenceMax":9}]}`,
			"STOP"))
	}))
	defer server.Close()

	p := gemini.NewParserWithEndpoint(&config.AIParserConfig{Provider: domain.ProviderGemini, APIKey: "gem-key"}, server.URL)
	report, err := p.Extract(context.Background(), "WBC 11,2")

	require.NoError(t, err)
	require.Len(t, report.Indicators, 1)
	assert.Equal(t, 11.2, report.Indicators[0].Value)
	assert.False(t, *report.Indicators[0].IsNormal)
}

func TestGeminiParser_Extract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    interface{}
		wantErr string
	}{
		{"no candidates", map[string]interface{}{"candidates": []interface{}{}}, "no candidates"},
		{"max tokens", geminiResponse(`{"indicators":[`, "MAX_TOKENS"), "MAX_TOKENS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			p := gemini.NewParserWithEndpoint(&config.AIParserConfig{APIKey: "k"}, server.URL)
			_, err := p.Extract(context.Background(), "text")

			assert.ErrorIs(t, err, domain.ErrExtraction)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
