package request

import (
	"mime"
	"net/http"
)

// bodyMethods are the verbs whose bodies reach the consent handlers.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// BodyLimit caps request bodies at maxBytes. A declared Content-Length over
// the cap is refused before the handler runs; anything else is wrapped in
// http.MaxBytesReader so the decoder fails once the cap is crossed.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bodyMethods[r.Method] {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				writeRejection(w, http.StatusRequestEntityTooLarge,
					`{"error":"request_too_large","error_description":"request body exceeds limit"}`)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON refuses bodies declared as anything but application/json.
// A missing Content-Type is let through for curl-style clients.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bodyMethods[r.Method] && !acceptsContentType(r.Header.Get("Content-Type")) {
			writeRejection(w, http.StatusUnsupportedMediaType,
				`{"error":"invalid_content_type","error_description":"Content-Type must be application/json"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func acceptsContentType(ct string) bool {
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

func writeRejection(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body)) //nolint:errcheck // headers already sent
}
