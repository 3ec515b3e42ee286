package request

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"carebridge/pkg/platform/privacy"
	"carebridge/pkg/requestcontext"
)

// quietPaths are probe and scrape endpoints logged only when they fail.
var quietPaths = map[string]bool{
	"/health":       true,
	"/health/live":  true,
	"/health/ready": true,
	"/metrics":      true,
}

// statusRecorder remembers the status a handler wrote; 200 when it wrote
// none explicitly.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func record(w http.ResponseWriter) *statusRecorder {
	if sr, ok := w.(*statusRecorder); ok {
		return sr
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter { return sr.ResponseWriter }

// Logger writes one access line per request: Info for 2xx/3xx, Warn for
// 4xx, Error for 5xx. The client address is logged anonymized.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := record(w)
			next.ServeHTTP(sr, r)

			if quietPaths[r.URL.Path] && sr.status < http.StatusInternalServerError {
				return
			}
			ctx := r.Context()
			logger.Log(ctx, levelFor(sr.status), "http request",
				"request_id", requestcontext.RequestID(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"client_ip_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Latency observes request duration labelled by method, route and status
// class. routeFn should return a bounded label such as the chi pattern; the
// raw path is used when it is nil or returns "".
func Latency(m *Metrics, routeFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := record(w)
			next.ServeHTTP(sr, r)

			route := r.URL.Path
			if routeFn != nil {
				if pattern := routeFn(r); pattern != "" {
					route = pattern
				}
			}
			m.Observe(r.Method, route, statusClass(sr.status), time.Since(start))
		})
	}
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}
