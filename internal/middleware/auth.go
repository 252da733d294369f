package middleware

import (
	"log/slog"
	"net/http"

	"github.com/chaski/registry/internal/response"
	"github.com/chaski/registry/internal/session"
)

// SessionResolver turns an Authorization header into a session.
type SessionResolver interface {
	Resolve(authHeader string) (session.Session, error)
}

// Session returns middleware that resolves the caller's session and stores it
// in the request context. An invalid or expired token leaves the caller
// anonymous; capability checks downstream decide what that may do.
func Session(resolver SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := resolver.Resolve(r.Header.Get("Authorization"))
			if err != nil {
				logger.Debug("bearer token ignored",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				s = session.Anonymous
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// RequireCapability rejects requests whose session lacks c.
func RequireCapability(c session.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !session.FromContext(r.Context()).Can(c) {
				response.Forbidden(w, "Acceso restringido a administradores")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
