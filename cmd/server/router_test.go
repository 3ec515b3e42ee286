package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	consentmetrics "carebridge/internal/consent/metrics"
	"carebridge/internal/consent/workers/expiry"
	"carebridge/internal/platform/config"
	"carebridge/internal/platform/health"
	"carebridge/pkg/platform/middleware/ratelimit"
	"carebridge/pkg/platform/middleware/request"
)

const testAdminToken = "router-test-admin-token"

// RouterSuite runs the production router over in-memory infrastructure.
type RouterSuite struct {
	suite.Suite
	app    *consentApp
	router http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Server{
		Environment: "test",
		AdminToken:  testAdminToken,
		Consent:     config.ConsentConfig{SigningKey: "router-test-signing-key-0123456789", SweepInterval: time.Minute},
		Directory:   config.DirectoryConfig{SeedPatientIDs: []string{"patient-0001@carebridge"}},
	}
	reg := prometheus.NewRegistry()
	metrics := consentmetrics.New(reg)

	app, err := buildConsent(cfg, log, &infra{log: log}, reg, metrics)
	s.Require().NoError(err)
	s.Nil(app.relay)
	s.app = app
	s.T().Cleanup(app.publisher.Close)

	worker, err := expiry.New(app.service, expiry.WithLogger(log))
	s.Require().NoError(err)

	s.router = newRouter(routerDeps{
		cfg:         cfg,
		log:         log,
		consent:     app.service,
		sweeper:     worker,
		auditTrail:  app.publisher,
		limiter:     ratelimit.New(1, 1),
		health:      health.New(cfg.Environment),
		registry:    reg,
		httpMetrics: request.NewMetrics(reg),
	})
}

func (s *RouterSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) createRequest() string {
	w := s.do(http.MethodPost, "/consent/requests", map[string]any{
		"patientId":   "patient-0001@carebridge",
		"requesterId": "dr-meera",
		"purpose":     "Care management",
		"hipId":       "hip-city-hospital",
		"hiuId":       "hiu-family-clinic",
		"expiryDate":  time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	return created.ID
}

func (s *RouterSuite) TestEveryResponseCarriesARequestID() {
	w := s.do(http.MethodGet, "/health/live", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestAdminRoutesRequireTheToken() {
	w := s.do(http.MethodPost, "/admin/consent/sweep", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/admin/consent/sweep", nil, map[string]string{"X-Admin-Token": testAdminToken})
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"expired":0}`, w.Body.String())
}

func (s *RouterSuite) TestAuditTrailShowsRecordedEvents() {
	reqID := s.createRequest()
	headers := map[string]string{"X-Admin-Token": testAdminToken}

	var trail struct {
		Events []struct {
			Action      string `json:"action"`
			PatientHash string `json:"patientHash"`
		} `json:"events"`
	}
	s.Eventually(func() bool {
		w := s.do(http.MethodGet, "/admin/consent/audit/"+reqID, nil, headers)
		if w.Code != http.StatusOK {
			return false
		}
		return json.Unmarshal(w.Body.Bytes(), &trail) == nil && len(trail.Events) == 1
	}, time.Second, 10*time.Millisecond)

	s.NotEmpty(trail.Events[0].Action)
	s.NotEqual("patient-0001@carebridge", trail.Events[0].PatientHash)
}

func (s *RouterSuite) TestAccessChecksAreRateLimited() {
	path := "/consent/artefacts/" + uuid.NewString() + "/check"
	body := map[string]any{"categories": []string{"LAB_REPORTS"}}

	first := s.do(http.MethodPost, path, body, nil)
	s.Equal(http.StatusOK, first.Code)
	s.JSONEq(`{"allowed":false}`, first.Body.String())

	second := s.do(http.MethodPost, path, body, nil)
	s.Equal(http.StatusTooManyRequests, second.Code)
	s.NotEmpty(second.Header().Get("Retry-After"))
}

func (s *RouterSuite) TestMetricsAreExposed() {
	s.createRequest()
	w := s.do(http.MethodGet, "/metrics", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.True(strings.Contains(w.Body.String(), "carebridge_consent_requests_created_total"))
}
