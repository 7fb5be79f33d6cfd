package middlewares

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sonuudigital/lovecakes/internal/auth"
	"github.com/sonuudigital/lovecakes/internal/logs"
	"github.com/sonuudigital/lovecakes/internal/web"
)

type contextKey string

const (
	scopeKey contextKey = "scope"

	AccountHeader = "X-Account-ID"

	unauthorizedTitle   = "Unauthorized"
	missingHeaderMsg    = "Missing authorization header."
	malformedHeaderMsg  = "Invalid authorization header format."
	invalidTokenMsg     = "Invalid or expired token."
	missingAccountMsg   = "Missing account. Provide a bearer token or the X-Account-ID header."
	invalidAccountMsg   = "X-Account-ID must be a positive integer."
	invalidAccountTitle = "Invalid Account"
)

// Scope is the tenant, and for authenticated requests the user, a request
// acts on.
type Scope struct {
	AccountID     int64
	UserID        int64
	Authenticated bool
}

type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(validator TokenValidator, logger logs.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				web.RespondWithError(w, logger, r, http.StatusUnauthorized, unauthorizedTitle, missingHeaderMsg)
				return
			}

			claims, ok := authenticate(w, r, validator, logger, authHeader)
			if !ok {
				return
			}
			next.ServeHTTP(w, withClaims(r, claims))
		})
	}
}

// OptionalAuthMiddleware accepts either a bearer token or an anonymous
// X-Account-ID header. A token that is present but invalid is still rejected.
func OptionalAuthMiddleware(validator TokenValidator, logger logs.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authHeader := r.Header.Get("Authorization"); authHeader != "" {
				claims, ok := authenticate(w, r, validator, logger, authHeader)
				if !ok {
					return
				}
				next.ServeHTTP(w, withClaims(r, claims))
				return
			}

			raw := strings.TrimSpace(r.Header.Get(AccountHeader))
			if raw == "" {
				web.RespondWithError(w, logger, r, http.StatusUnauthorized, unauthorizedTitle, missingAccountMsg)
				return
			}
			accountID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || accountID <= 0 {
				web.RespondWithError(w, logger, r, http.StatusBadRequest, invalidAccountTitle, invalidAccountMsg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), Scope{AccountID: accountID})))
		})
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, validator TokenValidator, logger logs.Logger, authHeader string) (*auth.Claims, bool) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		web.RespondWithError(w, logger, r, http.StatusUnauthorized, unauthorizedTitle, malformedHeaderMsg)
		return nil, false
	}

	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		logger.Warn("invalid token", "error", err)
		web.RespondWithError(w, logger, r, http.StatusUnauthorized, unauthorizedTitle, invalidTokenMsg)
		return nil, false
	}
	return claims, true
}

func withClaims(r *http.Request, claims *auth.Claims) *http.Request {
	// ValidateToken already rejected a non-numeric subject.
	userID, _ := claims.UserID()

	return r.WithContext(WithScope(r.Context(), Scope{
		AccountID:     claims.AccountID,
		UserID:        userID,
		Authenticated: true,
	}))
}

func GetScope(r *http.Request) (Scope, bool) {
	scope, ok := r.Context().Value(scopeKey).(Scope)
	return scope, ok
}

// WithScope attaches a scope to ctx. Handlers read it back with GetScope.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}
