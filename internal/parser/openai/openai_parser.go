package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/port"
)

const (
	apiURL = "https://api.openai.com/v1/chat/completions"
)

func init() {
	parser.RegisterProvider(domain.ProviderOpenAI, func(cfg *config.AIParserConfig) (port.ReportExtractor, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.ReportExtractor using the OpenAI Chat Completions
// API in structured-output mode.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates an OpenAI-based extractor from a resolved config.
func NewParser(cfg *config.AIParserConfig) *Parser {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newParser(cfg, endpoint)
}

// NewParserWithEndpoint creates a parser pointing at a custom API endpoint (for testing).
func NewParserWithEndpoint(cfg *config.AIParserConfig, endpoint string) *Parser {
	return newParser(cfg, endpoint)
}

func newParser(cfg *config.AIParserConfig, endpoint string) *Parser {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		// No client timeout: callers bound the request through ctx.
		client: &http.Client{},
	}
}

func (p *Parser) Extract(ctx context.Context, text string) (*domain.ParsedReport, error) {
	if err := parser.RequireAPIKey(domain.ProviderOpenAI, p.apiKey); err != nil {
		return nil, err
	}
	started := time.Now()

	reqBody := map[string]interface{}{
		"model":       p.model,
		"temperature": 0.1,
		"messages": []map[string]interface{}{
			{"role": "system", "content": parser.SystemPrompt()},
			{"role": "user", "content": parser.UserPrompt(text)},
		},
		"response_format": map[string]interface{}{
			"type": "json_schema",
			"json_schema": map[string]interface{}{
				"name":   "lab_report",
				"strict": true,
				"schema": parser.ReportSchema(),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderOpenAI, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderOpenAI, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderOpenAI, fmt.Errorf("calling openai API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderOpenAI, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parser.NewAPIError(domain.ProviderOpenAI, resp, respBody)
	}

	content, err := parseResponse(respBody)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderOpenAI, err)
	}
	return parser.Finish(domain.ProviderOpenAI, p.model, content, started)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}

	return choice.Message.Content, nil
}
