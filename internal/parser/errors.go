package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"labparse/internal/domain"
)

var (
	errMissingAPIKey = errors.New("missing API key")
	errEmptyOutput   = errors.New("empty model output")
)

// ExtractionError reports a failed AI extraction: a transport failure, a
// non-success response, or model output that could not be used.
type ExtractionError struct {
	Provider   domain.AIProvider
	StatusCode int
	Body       string
	RetryAfter time.Duration
	Err        error
}

func (e *ExtractionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, truncate(e.Body, 500))
	}
	return fmt.Sprintf("%s extraction failed: %v", e.Provider, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is makes every ExtractionError match domain.ErrExtraction.
func (e *ExtractionError) Is(target error) bool {
	return target == domain.ErrExtraction
}

// RateLimited reports whether the provider answered HTTP 429.
func (e *ExtractionError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// NewExtractionError wraps err as an ExtractionError for provider.
func NewExtractionError(provider domain.AIProvider, err error) *ExtractionError {
	return &ExtractionError{Provider: provider, Err: err}
}

// NewAPIError builds an ExtractionError from a non-success HTTP response.
// For 429 responses RetryAfter comes from the Retry-After header, 60s if
// absent.
func NewAPIError(provider domain.AIProvider, resp *http.Response, body []byte) *ExtractionError {
	e := &ExtractionError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		secs := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 60
		}
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// RequireAPIKey fails fast, before any network call, when a hosted provider
// has no credentials.
func RequireAPIKey(provider domain.AIProvider, apiKey string) error {
	if apiKey == "" {
		return NewExtractionError(provider, errMissingAPIKey)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
