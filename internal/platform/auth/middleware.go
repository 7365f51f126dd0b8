package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	"github.com/janisto/devconnector-api/internal/platform/logging"
)

type userContextKey struct{}

// NewAuthMiddleware rejects requests to operations that declare Security
// unless they carry a credential the verifier accepts. Operations without a
// security requirement pass through untouched.
func NewAuthMiddleware(api huma.API, verifier Verifier) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		token, err := ExtractToken(ctx.Header("Authorization"), ctx.Header(LegacyTokenHeader))
		var user *User
		if err == nil {
			user, err = verifier.Verify(ctx.Context(), token)
		}
		if err != nil {
			reject(api, ctx, err)
			return
		}

		ctx = huma.WithValue(ctx, userContextKey{}, user)
		ctx = huma.WithContext(ctx, logging.WithFields(ctx.Context(), zap.String("userId", user.UID)))
		next(ctx)
	}
}

// reject writes the 401 (or 503 while signing keys cannot be fetched) for a
// failed authentication. The verifier's error is only logged.
func reject(api huma.API, ctx huma.Context, err error) {
	logging.LogWarn(ctx.Context(), "auth rejected", zap.String("reason", categorizeAuthError(err)))
	switch {
	case errors.Is(err, ErrCertificateFetch):
		ctx.SetHeader("Retry-After", "30")
		_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "authentication service temporarily unavailable")
	case errors.Is(err, ErrNoToken):
		ctx.SetHeader("WWW-Authenticate", "Bearer")
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "No token, authorization denied")
	default:
		ctx.SetHeader("WWW-Authenticate", "Bearer")
		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "Token is not valid")
	}
}

func categorizeAuthError(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "no_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// UserFromContext returns the authenticated user, or nil on public operations.
func UserFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(userContextKey{}).(*User)
	return user
}

// ContextWithUser attaches user to ctx the way the middleware does.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}
