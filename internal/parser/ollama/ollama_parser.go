// Package ollama extracts lab reports with a self-hosted model served over
// the Ollama HTTP API.
package ollama

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
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.1"
)

func init() {
	parser.RegisterProvider(domain.ProviderLocal, func(cfg *config.AIParserConfig) (port.ReportExtractor, error) {
		return NewParser(cfg), nil
	})
}

// Parser implements port.ReportExtractor against a local Ollama server.
// No credentials are needed.
type Parser struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewParser creates a local-model extractor. cfg.Endpoint is the server
// base URL, e.g. http://localhost:11434.
func NewParser(cfg *config.AIParserConfig) *Parser {
	baseURL := strings.TrimRight(cfg.Endpoint, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Parser{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{},
	}
}

// generateRequest is the Ollama generate API request.
type generateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// generateResponse is the Ollama generate API response.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *Parser) Extract(ctx context.Context, text string) (*domain.ParsedReport, error) {
	started := time.Now()

	reqBody := generateRequest{
		Model:   p.model,
		System:  parser.SystemPrompt(),
		Prompt:  parser.UserPrompt(text),
		Stream:  false,
		Format:  "json",
		Options: map[string]interface{}{"temperature": 0},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderLocal, fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderLocal, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderLocal, fmt.Errorf("calling Ollama: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, parser.NewExtractionError(domain.ProviderLocal, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parser.NewAPIError(domain.ProviderLocal, resp, respBody)
	}

	var genResp generateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return nil, parser.NewExtractionError(domain.ProviderLocal, fmt.Errorf("decoding response: %w", err))
	}

	return parser.Finish(domain.ProviderLocal, p.model, genResp.Response, started)
}
