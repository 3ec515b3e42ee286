package handler

import (
	"strings"

	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
)

// parseStatusFilter converts the ?status= query parameter. An absent
// parameter means no filter.
func parseStatusFilter(raw string) (*models.Status, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	status, err := models.ParseStatus(raw)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid status filter")
	}
	return &status, nil
}
