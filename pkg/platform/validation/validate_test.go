package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carebridge/pkg/domain-errors"
)

type sampleRequest struct {
	PatientID  string   `json:"patientId" validate:"required,notblank"`
	AccessMode string   `json:"accessMode" validate:"required,oneof=VIEW STORE QUERY STREAM"`
	Categories []string `json:"categories" validate:"min=1"`
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate(sampleRequest{PatientID: "p-1", AccessMode: "VIEW", Categories: []string{"OBSERVATION"}}))
	})

	t.Run("uses json field names", func(t *testing.T) {
		err := Validate(sampleRequest{AccessMode: "VIEW", Categories: []string{"A"}})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Equal(t, "patientId is required", err.Error())
	})

	t.Run("blank", func(t *testing.T) {
		err := Validate(sampleRequest{PatientID: "  ", AccessMode: "VIEW", Categories: []string{"A"}})
		assert.EqualError(t, err, "patientId must not be blank")
	})

	t.Run("oneof", func(t *testing.T) {
		err := Validate(sampleRequest{PatientID: "p", AccessMode: "DELETE", Categories: []string{"A"}})
		assert.EqualError(t, err, "accessMode must be one of [VIEW STORE QUERY STREAM]")
	})

	t.Run("min", func(t *testing.T) {
		err := Validate(sampleRequest{PatientID: "p", AccessMode: "VIEW"})
		assert.EqualError(t, err, "categories must be at least 1")
	})
}
