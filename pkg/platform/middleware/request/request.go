package request

import (
	"log/slog"
	"net/http"
	"regexp"
	"runtime/debug"

	"github.com/google/uuid"

	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/platform/httputil"
	"carebridge/pkg/requestcontext"
)

const requestIDHeader = "X-Request-ID"

// MaxRequestIDLength bounds client-supplied X-Request-ID values.
const MaxRequestIDLength = 128

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RequestID adopts the caller's X-Request-ID when it is short and made of
// safe characters, mints a UUID otherwise, and echoes the id back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if !isValidRequestID(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), rid)))
	})
}

func isValidRequestID(rid string) bool {
	return rid != "" && len(rid) <= MaxRequestIDLength && requestIDPattern.MatchString(rid)
}

// Recovery answers a panicking handler with a bare internal_error and logs
// the stack against the request id.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				ctx := r.Context()
				logger.ErrorContext(ctx, "panic recovered",
					"request_id", requestcontext.RequestID(ctx),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
