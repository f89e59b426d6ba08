// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/apptnu/portal/internal/core"
)

// RoleAdmin is the user_role value that grants administrative access.
const RoleAdmin = "Admin"

const (
	callerKey contextKey = "caller"
	claimsKey contextKey = "jwt_claims"
)

type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID    int64
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID int64
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanActFor reports whether the caller may read or write data owned by
// userID.
func (c Caller) CanActFor(userID int64) bool {
	return c.IsAdmin() || c.UserID == userID
}

// Authenticator rejects requests without a valid bearer token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)

			if token == "" {
				core.JSONError(
					w,
					core.UnauthorizedError("missing authorization token"),
				)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Identify attaches the caller when a bearer token is present and lets
// anonymous requests through. A token that fails verification is still
// rejected.
func Identify(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := GetCaller(r.Context())
		if !ok {
			core.JSONError(w, core.UnauthorizedError(""))
			return
		}

		if !caller.IsAdmin() {
			core.JSONError(w, core.ForbiddenError(""))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrTokenExpired):
		core.JSONError(w, core.TokenExpiredError())
	case errors.Is(err, core.ErrTokenRevoked):
		core.JSONError(w, core.TokenRevokedError())
	case errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		// The token may be fine; the revocation store could not be asked.
		core.JSONError(w, core.AuthUnavailableError(err))
	}
}

func WithClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	return context.WithValue(ctx, callerKey, Caller{
		UserID: claims.UserID,
		Role:   claims.Role,
	})
}

func GetCaller(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	if claims, ok := ctx.Value(claimsKey).(*AccessTokenClaims); ok {
		return claims
	}
	return nil
}
