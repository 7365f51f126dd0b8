// Package auth resolves a request credential to an authenticated user and
// gates huma operations that declare a security requirement.
package auth

import (
	"context"
	"errors"
	"strings"
)

// User is the identity attached to an authenticated request.
type User struct {
	UID           string
	Email         string
	EmailVerified bool
}

var (
	// ErrNoToken indicates the request carried no credential.
	ErrNoToken = errors.New("missing authorization header")

	// ErrInvalidToken indicates a malformed header or a token that failed verification.
	ErrInvalidToken = errors.New("invalid token")

	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch indicates the verifier could not load its signing
	// keys. Requests fail with 503 rather than 401.
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates a raw token and returns the user it identifies.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// LegacyTokenHeader carries a bare token for clients that predate bearer auth.
const LegacyTokenHeader = "X-Auth-Token"

// ExtractBearerToken returns the token from an "Authorization: Bearer <token>"
// header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}

// ExtractToken prefers the Authorization header and falls back to the legacy
// header when Authorization is absent.
func ExtractToken(authorization, legacy string) (string, error) {
	if authorization != "" {
		return ExtractBearerToken(authorization)
	}
	if legacy = strings.TrimSpace(legacy); legacy != "" {
		return legacy, nil
	}
	return "", ErrNoToken
}
