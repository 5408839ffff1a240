// Package fallback asks an external semantic matching service for values of fields
// the rule table could not map. Suggestions are advisory and never applied here.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
)

// maxErrorBody bounds how much of a failed response is quoted in the error
const maxErrorBody = 512

// Suggestion is one proposed value for an unmapped field
type Suggestion struct {
	FieldName      string `json:"fieldName"`
	SuggestedValue string `json:"suggestedValue"`
	Reasoning      string `json:"reasoning,omitempty"`
	Confidence     int    `json:"confidence"`
}

// Field is an unmapped field as sent to the service
type Field struct {
	FieldName string `json:"fieldName"`
	Label     string `json:"label,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Purpose   string `json:"purpose,omitempty"`
}

// Request is the body posted to the service
type Request struct {
	UnmappedFields []Field              `json:"unmappedFields"`
	UserData       intelligence.Profile `json:"userData"`
}

// Response is the body returned by the service
type Response struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// Matcher is the boundary to the semantic matching service
type Matcher interface {
	Match(ctx context.Context, req Request) ([]Suggestion, error)
}

// HTTPMatcher posts match requests as JSON
type HTTPMatcher struct {
	endpoint string
	client   *http.Client
	headers  http.Header
}

// Option configures an HTTPMatcher
type Option func(*HTTPMatcher)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) Option {
	return func(m *HTTPMatcher) {
		if c != nil {
			m.client = c
		}
	}
}

// WithHeader adds a header to every request, e.g. an Authorization token
func WithHeader(key, value string) Option {
	return func(m *HTTPMatcher) {
		m.headers.Add(key, value)
	}
}

// NewHTTPMatcher creates a matcher for endpoint. Timeouts come from the caller's
// context rather than the client.
func NewHTTPMatcher(endpoint string, opts ...Option) *HTTPMatcher {
	m := &HTTPMatcher{
		endpoint: endpoint,
		client:   &http.Client{},
		headers:  make(http.Header),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match sends one request. Non-2xx responses are errors; no retries are made.
func (m *HTTPMatcher) Match(ctx context.Context, req Request) ([]Suggestion, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, values := range m.headers {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("matching request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("matching service returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Suggestions, nil
}
