package e2e

import (
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	"carebridge/internal/audit"
	consenthandler "carebridge/internal/consent/handler"
	consentservice "carebridge/internal/consent/service"
	"carebridge/internal/consent/signing"
	consentstore "carebridge/internal/consent/store"
	"carebridge/internal/consent/workers/expiry"
	"carebridge/internal/patient/directory"
	"carebridge/pkg/platform/clock"
	"carebridge/pkg/platform/middleware/admin"
	"carebridge/pkg/platform/middleware/request"
	"carebridge/pkg/platform/validation"
	"carebridge/pkg/testutil"
)

const (
	e2eAdminToken = "e2e-admin-token"
	e2eSigningKey = "e2e-consent-signing-key-0123456789abcdef"
)

// Server is an in-process carebridge instance with a controllable clock.
type Server struct {
	URL        string
	Clock      *clock.Fake
	AdminToken string

	srv *httptest.Server
}

// StartServer boots the consent API over a fresh in-memory store. The
// directory knows PatientID1 and PatientID2 from pkg/testutil.
func StartServer() (*Server, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := clock.NewFake(testutil.RefTime)

	signer, err := signing.NewJWS(e2eSigningKey)
	if err != nil {
		return nil, err
	}
	publisher := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithPublisherLogger(logger))
	svc := consentservice.NewService(
		consentstore.New(),
		directory.NewStatic(testutil.TestIDs.PatientID1, testutil.TestIDs.PatientID2),
		signer,
		consentservice.WithClock(clk),
		consentservice.WithLogger(logger),
		consentservice.WithAuditor(publisher),
	)
	worker, err := expiry.New(svc, expiry.WithClock(clk), expiry.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(request.RequestID, request.Recovery(logger), request.ClientMetadata(nil), request.BodyLimit(validation.MaxBodySize), request.ContentTypeJSON)
	h := consenthandler.New(svc, logger)
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(e2eAdminToken, logger))
		h.RegisterAdmin(r, worker)
		h.RegisterAuditTrail(r, publisher)
	})

	srv := httptest.NewServer(r)
	return &Server{URL: srv.URL, Clock: clk, AdminToken: e2eAdminToken, srv: srv}, nil
}

func (s *Server) Close() {
	s.srv.Close()
}
