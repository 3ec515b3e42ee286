package signing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebridge/internal/consent/models"
	id "carebridge/pkg/domain"
	dErrors "carebridge/pkg/domain-errors"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testPayload() models.SignaturePayload {
	return models.SignaturePayload{
		RequestID: id.NewConsentRequestID(),
		PatientID: "patient-0001@carebridge",
		HIUID:     "hiu-0001",
		HIPID:     "hip-0001",
		Timestamp: time.Date(2026, 3, 1, 10, 0, 0, 123456000, time.UTC),
	}
}

func TestNewJWSRejectsShortKey(t *testing.T) {
	_, err := NewJWS("short")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := NewJWS(testKey)
	require.NoError(t, err)
	ctx := context.Background()
	p := testPayload()

	sig, err := s.Sign(ctx, p)
	require.NoError(t, err)
	assert.Len(t, strings.Split(sig, "."), 3)

	ok, err := s.Verify(ctx, p, sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyDetectsTampering(t *testing.T) {
	s, err := NewJWS(testKey)
	require.NoError(t, err)
	ctx := context.Background()
	p := testPayload()
	sig, err := s.Sign(ctx, p)
	require.NoError(t, err)

	t.Run("different payload", func(t *testing.T) {
		other := p
		other.HIUID = "hiu-9999"
		ok, err := s.Verify(ctx, other, sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("sub-second timestamp change", func(t *testing.T) {
		other := p
		other.Timestamp = p.Timestamp.Add(time.Microsecond)
		ok, err := s.Verify(ctx, other, sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("other key", func(t *testing.T) {
		other, err := NewJWS(strings.Repeat("k", 32))
		require.NoError(t, err)
		ok, err := other.Verify(ctx, p, sig)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("garbage", func(t *testing.T) {
		ok, err := s.Verify(ctx, p, "not-a-token")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty", func(t *testing.T) {
		ok, err := s.Verify(ctx, p, "")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	s, err := NewJWS(testKey)
	require.NoError(t, err)
	p := testPayload()

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor(p)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	ok, err := s.Verify(context.Background(), p, unsigned)
	require.NoError(t, err)
	assert.False(t, ok)
}
