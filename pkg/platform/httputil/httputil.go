// Package httputil writes JSON responses and maps domain error codes onto
// HTTP statuses and the public "error" field.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "carebridge/pkg/domain-errors"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type httpError struct {
	status int
	name   string
}

var internalError = httpError{http.StatusInternalServerError, "internal_error"}

var byCode = map[dErrors.Code]httpError{
	dErrors.CodeBadRequest:             {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:             {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation:     {http.StatusBadRequest, "validation_error"},
	dErrors.CodeNotFound:               {http.StatusNotFound, "not_found"},
	dErrors.CodeInvalidStateTransition: {http.StatusConflict, "invalid_state_transition"},
	dErrors.CodeConflict:               {http.StatusConflict, "conflict"},
	dErrors.CodeUnavailable:            {http.StatusServiceUnavailable, "service_unavailable"},
	dErrors.CodeTimeout:                {http.StatusGatewayTimeout, "timeout"},
	dErrors.CodeInternal:               internalError,
}

func lookup(code dErrors.Code) httpError {
	if e, ok := byCode[code]; ok {
		return e
	}
	return internalError
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body) //nolint:errcheck // status already sent
}

// WriteError writes err as an ErrorResponse. Uncoded errors and
// CodeInternal go out as a bare internal_error with no description.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, internalError.status, ErrorResponse{Error: internalError.name})
		return
	}
	mapped := lookup(de.Code)
	resp := ErrorResponse{Error: mapped.name}
	if mapped != internalError {
		resp.ErrorDescription = de.Message
	}
	WriteJSON(w, mapped.status, resp)
}

// DomainCodeToHTTPStatus is the status WriteError would use for code.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	return lookup(code).status
}
