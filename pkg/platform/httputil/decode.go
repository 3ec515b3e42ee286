package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "carebridge/pkg/domain-errors"
	"carebridge/pkg/requestcontext"
)

// Request DTOs opt into preparation steps by implementing any of these.
type (
	Sanitizable  interface{ Sanitize() }
	Normalizable interface{ Normalize() }
	Validatable  interface{ Validate() error }
)

// Bind reads a single JSON document from the body into a fresh T, then runs
// Prepare on it. Any failure is written to w and Bind returns false; the
// caller just returns.
//
//	body, ok := httputil.Bind[GrantConsentRequest](w, r, h.logger)
//	if !ok {
//		return
//	}
func Bind[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	ctx := r.Context()
	dst := new(T)

	if err := decodeBody(r.Body, dst); err != nil {
		logger.WarnContext(ctx, "rejected request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Error:            "request_too_large",
				ErrorDescription: "request body exceeds limit",
			})
			return nil, false
		}
		WriteError(w, err)
		return nil, false
	}

	if err := Prepare(dst); err != nil {
		logger.WarnContext(ctx, "request failed validation",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.New(dErrors.CodeValidation, err.Error())
		}
		WriteError(w, err)
		return nil, false
	}
	return dst, true
}

// Prepare runs Sanitize, Normalize and Validate, in that order, on whichever
// of them v implements.
func Prepare(v any) error {
	if s, ok := v.(Sanitizable); ok {
		s.Sanitize()
	}
	if n, ok := v.(Normalizable); ok {
		n.Normalize()
	}
	if val, ok := v.(Validatable); ok {
		return val.Validate()
	}
	return nil
}

func decodeBody(body io.Reader, dst any) error {
	if body == nil || body == http.NoBody {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return err
		case errors.Is(err, io.EOF):
			return dErrors.New(dErrors.CodeBadRequest, "request body is required")
		default:
			return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
		}
	}
	// A second document after the first is as malformed as a broken one.
	if dec.More() {
		return dErrors.New(dErrors.CodeBadRequest, "request body must hold a single JSON object")
	}
	return nil
}
