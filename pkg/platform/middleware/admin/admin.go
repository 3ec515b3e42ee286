// Package admin guards the operator routes under /admin.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"carebridge/pkg/platform/httputil"
	"carebridge/pkg/requestcontext"
)

const (
	TokenHeader = "X-Admin-Token"
	ActorHeader = "X-Admin-Actor-ID"
)

// RequireAdminToken passes a request on only when its X-Admin-Token equals
// token; an empty token closes the admin surface. An X-Admin-Actor-ID header
// on an admitted request is exposed through requestcontext.AdminActor.
func RequireAdminToken(token string, logger *slog.Logger) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			got := r.Header.Get(TokenHeader)
			if !tokenMatches(want, got) {
				logger.WarnContext(ctx, "admin request rejected",
					"request_id", requestcontext.RequestID(ctx),
					"method", r.Method,
					"path", r.URL.Path,
					"token_present", got != "",
				)
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
					Error:            "unauthorized",
					ErrorDescription: "admin token required",
				})
				return
			}
			if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
				ctx = requestcontext.WithAdminActor(ctx, actor)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenMatches(want []byte, got string) bool {
	return len(want) > 0 && subtle.ConstantTimeCompare(want, []byte(got)) == 1
}
