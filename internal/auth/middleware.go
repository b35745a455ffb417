package auth

import (
	"context"
	"net/http"

	"github.com/BradenHooton/wakeguard/internal/models"
	pkghttp "github.com/BradenHooton/wakeguard/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the active session in context
	SessionContextKey contextKey = "session"
)

// SessionAuthenticator resolves a session ID to an active session, refreshing
// its inactivity timer. Implementations destroy idle sessions and return
// models.ErrSessionExpired for them.
type SessionAuthenticator interface {
	AuthEnabled() bool
	Authenticate(ctx context.Context, sessionID, ipAddress string) (*models.Session, error)
}

// RequireAuth gates protected routes. With authentication disabled it is a
// pass-through. Otherwise a request needs a valid cookie referencing an
// active session. Every 401 looks the same, and a presented cookie is always
// cleared so an expired session is indistinguishable from a revoked one.
func RequireAuth(authn SessionAuthenticator, tm *SessionTokenManager, cookies CookieConfig, ipConfig *pkghttp.IPConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authn.AuthEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, ok := SessionIDFromRequest(r, tm)
			if !ok {
				if hasSessionCookie(r) {
					ClearSessionCookie(w, cookies)
				}
				pkghttp.WriteAuthRequired(w, "Authentication required")
				return
			}

			ip := pkghttp.ExtractClientIP(r, ipConfig)
			session, err := authn.Authenticate(r.Context(), sessionID, ip)
			if err != nil {
				ClearSessionCookie(w, cookies)
				pkghttp.WriteAuthRequired(w, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasSessionCookie(r *http.Request) bool {
	_, err := r.Cookie(SessionCookieName)
	return err == nil
}

// GetSessionFromContext returns the session attached by RequireAuth, or nil
// when authentication is disabled
func GetSessionFromContext(r *http.Request) *models.Session {
	session, ok := r.Context().Value(SessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
