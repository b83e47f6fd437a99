package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"stockcount-api/internal/model"
	"stockcount-api/internal/service"
	"stockcount-api/pkg/apierror"
)

// SessionKey is the key for storing session data in request context.
const SessionKey contextKey = "session"

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "session_token"

// SessionValidator resolves a session token.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.SessionData, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Sessions SessionValidator
}

// TokenFromRequest reads the session token from X-Token, a Bearer
// Authorization header, or the session cookie, in that order.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get("X-Token"); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// NewAuthMiddleware creates an authentication middleware with injected dependencies.
// Requests without a valid session are rejected with 401.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" || cfg.Sessions == nil {
				writeError(w, apierror.Unauthorized("Authentication required"))
				return
			}

			session, err := cfg.Sessions.Validate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrInvalidSession) {
					log.Printf("[Auth] Session lookup failed (request %s): %v", GetRequestID(r.Context()), err)
				}
				writeError(w, apierror.Unauthorized("Invalid or expired session"))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects sessions whose role is not listed. It must run after
// the auth middleware.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil {
				writeError(w, apierror.Unauthorized(""))
				return
			}
			for _, role := range roles {
				if session.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, apierror.Forbidden("Insufficient role"))
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// GetSessionFromContext retrieves session data from request context.
func GetSessionFromContext(ctx context.Context) *model.SessionData {
	if data, ok := ctx.Value(SessionKey).(*model.SessionData); ok {
		return data
	}
	return nil
}
