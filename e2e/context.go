package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"carebridge/pkg/platform/clock"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	Clock            *clock.Fake
	AdminToken       string
	LastResponse     *http.Response
	LastResponseBody []byte

	saved map[string]string
}

// NewTestContext creates a test context bound to a running server.
func NewTestContext(srv *Server) *TestContext {
	return &TestContext{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Clock:      srv.Clock,
		AdminToken: srv.AdminToken,
		saved:      map[string]string{},
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body any, headers map[string]string) error {
	return tc.do(http.MethodPost, path, body, headers)
}

func (tc *TestContext) PATCH(path string, body any) error {
	return tc.do(http.MethodPatch, path, body, nil)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil, nil)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a top-level field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetAdminToken() string {
	return tc.AdminToken
}

// Save remembers a value (an id from a response) under name for later steps.
func (tc *TestContext) Save(name, value string) {
	tc.saved[name] = value
}

func (tc *TestContext) Saved(name string) (string, error) {
	v, ok := tc.saved[name]
	if !ok {
		return "", fmt.Errorf("nothing saved as %q", name)
	}
	return v, nil
}

// Now returns the server's current time.
func (tc *TestContext) Now() time.Time {
	return tc.Clock.Now()
}

// Advance moves the server clock forward.
func (tc *TestContext) Advance(d time.Duration) {
	tc.Clock.Advance(d)
}
