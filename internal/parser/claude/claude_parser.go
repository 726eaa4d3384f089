package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"labparse/internal/config"
	"labparse/internal/domain"
	"labparse/internal/parser"
	"labparse/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

func init() {
	parser.RegisterProvider(domain.ProviderAnthropic, func(cfg *config.AIParserConfig) (port.ReportExtractor, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.ReportExtractor using the Anthropic Messages API.
type Parser struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewParser creates a Claude-based extractor from a resolved config.
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
		model = "claude-sonnet-4-20250514"
	}
	return &Parser{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

func (p *Parser) Extract(ctx context.Context, text string) (*domain.ParsedReport, error) {
	if err := parser.RequireAPIKey(domain.ProviderAnthropic, p.apiKey); err != nil {
		return nil, err
	}
	started := time.Now()

	reqBody := map[string]interface{}{
		"model":       p.model,
		"max_tokens":  4096,
		"temperature": 0,
		"system":      parser.SystemPrompt(),
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": parser.UserPrompt(text),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderAnthropic, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderAnthropic, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderAnthropic, fmt.Errorf("calling anthropic API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderAnthropic, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parser.NewAPIError(domain.ProviderAnthropic, resp, respBody)
	}

	content, err := parseResponse(respBody)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderAnthropic, err)
	}
	return parser.Finish(domain.ProviderAnthropic, p.model, content, started)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// parseResponse returns the JSON object embedded in the reply. Claude may
// surround it with prose even when told not to.
func parseResponse(body []byte) (string, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	if resp.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from API")
	}

	obj, ok := parser.ExtractJSONObject(text)
	if !ok {
		return "", fmt.Errorf("no JSON object in model reply (raw: %s)", truncate(text, 500))
	}
	return obj, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
