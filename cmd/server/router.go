package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consenthandler "carebridge/internal/consent/handler"
	"carebridge/internal/platform/config"
	"carebridge/internal/platform/health"
	"carebridge/pkg/platform/middleware/admin"
	"carebridge/pkg/platform/middleware/ratelimit"
	"carebridge/pkg/platform/middleware/request"
	"carebridge/pkg/platform/validation"
)

type routerDeps struct {
	cfg         config.Server
	log         *slog.Logger
	consent     consenthandler.Service
	sweeper     consenthandler.Sweeper
	auditTrail  consenthandler.AuditTrail
	limiter     *ratelimit.Limiter
	health      *health.Handler
	registry    *prometheus.Registry
	httpMetrics *request.Metrics
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		request.RequestID,
		request.Recovery(d.log),
		request.ClientMetadata(d.cfg.TrustedProxies),
		request.Logger(d.log),
		request.Latency(d.httpMetrics, routePattern),
		request.BodyLimit(validation.MaxBodySize),
		request.ContentTypeJSON,
	)

	d.health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	h := consenthandler.New(d.consent, d.log)
	h.Register(r, d.limiter.Middleware)
	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(d.cfg.AdminToken, d.log))
		h.RegisterAdmin(r, d.sweeper)
		h.RegisterAuditTrail(r, d.auditTrail)
	})
	return r
}

// routePattern labels latency by chi route so ids stay out of metric labels.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
