package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	id "carebridge/pkg/domain"
	"carebridge/pkg/platform/circuit"
	"carebridge/pkg/platform/sentinel"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPConfig configures the HTTP directory client.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient HTTPDoer
	Breaker    *circuit.Breaker
}

// HTTP looks patients up with GET {base}/patients/{id}: 200 means the
// patient exists, 404 that it does not. Anything else is an unavailable
// directory and counts against the circuit breaker.
type HTTP struct {
	baseURL string
	client  HTTPDoer
	breaker *circuit.Breaker
}

func NewHTTP(cfg HTTPConfig) *HTTP {
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = circuit.New("patient_directory")
	}
	return &HTTP{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		breaker: breaker,
	}
}

func (h *HTTP) Exists(ctx context.Context, patientID id.PatientID) (bool, error) {
	var exists bool
	err := h.breaker.Do(func() error {
		var err error
		exists, err = h.lookup(ctx, patientID)
		return err
	})
	if errors.Is(err, circuit.ErrOpen) {
		return false, fmt.Errorf("patient directory: %w: %w", sentinel.ErrUnavailable, err)
	}
	return exists, err
}

func (h *HTTP) lookup(ctx context.Context, patientID id.PatientID) (bool, error) {
	endpoint := h.baseURL + "/patients/" + url.PathEscape(patientID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build directory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("patient directory: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10)) //nolint:errcheck // drain for connection reuse

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("patient directory: %w: status %d", sentinel.ErrUnavailable, resp.StatusCode)
	}
}
