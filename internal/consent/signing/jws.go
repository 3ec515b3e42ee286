// Package signing produces and checks consent artefact signatures as
// compact JWS tokens (HS256) over the canonical signature payload.
package signing

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carebridge/internal/consent/models"
	dErrors "carebridge/pkg/domain-errors"
)

const issuer = "carebridge"

// minKeyLength is the shortest HMAC key accepted, in bytes.
const minKeyLength = 32

// artefactClaims is the signed form of models.SignaturePayload. The signing
// time is kept at full precision in Timestamp; IssuedAt is seconds only.
type artefactClaims struct {
	RequestID string `json:"crid"`
	PatientID string `json:"pid"`
	HIUID     string `json:"hiu"`
	HIPID     string `json:"hip"`
	Timestamp string `json:"ts"`
	jwt.RegisteredClaims
}

// JWS signs artefact payloads with a shared HMAC key.
type JWS struct {
	key []byte
}

// NewJWS returns a signer for key. Keys shorter than 32 bytes are rejected.
func NewJWS(key string) (*JWS, error) {
	if len(key) < minKeyLength {
		return nil, dErrors.New(dErrors.CodeValidation, "signing key must be at least 32 bytes")
	}
	return &JWS{key: []byte(key)}, nil
}

func claimsFor(p models.SignaturePayload) artefactClaims {
	return artefactClaims{
		RequestID: p.RequestID.String(),
		PatientID: p.PatientID.String(),
		HIUID:     p.HIUID.String(),
		HIPID:     p.HIPID.String(),
		Timestamp: p.Timestamp.UTC().Format(time.RFC3339Nano),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  p.RequestID.String(),
			IssuedAt: jwt.NewNumericDate(p.Timestamp),
		},
	}
}

// Sign returns the compact JWS for payload.
func (s *JWS) Sign(_ context.Context, payload models.SignaturePayload) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claimsFor(payload))
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign artefact payload")
	}
	return signed, nil
}

// Verify reports whether signature is a token this signer issued for
// exactly payload. A malformed or forged token is reported as false, not
// as an error.
func (s *JWS) Verify(_ context.Context, payload models.SignaturePayload, signature string) (bool, error) {
	if signature == "" {
		return false, nil
	}
	parsed, err := jwt.ParseWithClaims(signature, &artefactClaims{},
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		// The key func cannot fail, so every parse error is a bad token.
		return false, nil
	}
	got, ok := parsed.Claims.(*artefactClaims)
	if !ok {
		return false, nil
	}
	want := claimsFor(payload)
	return got.RequestID == want.RequestID &&
		got.PatientID == want.PatientID &&
		got.HIUID == want.HIUID &&
		got.HIPID == want.HIPID &&
		got.Timestamp == want.Timestamp, nil
}
