package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/reverio/leadgen/internal/infra/auth"
)

const SessionCookie = "session"

type sessionKey struct{}

type SessionParser interface {
	Parse(raw string) (*auth.Session, error)
}

// RequireSession rejects requests without a valid session token, taken from
// the session cookie or an Authorization: Bearer header.
func RequireSession(parser SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				unauthorized(w, http.StatusUnauthorized, "UNAUTHENTICATED", "login required")
				return
			}
			s, err := parser.Parse(raw)
			if err != nil {
				unauthorized(w, http.StatusUnauthorized, "UNAUTHENTICATED", err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

// RequireAdmin must run after RequireSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFrom(r.Context())
		if !ok {
			unauthorized(w, http.StatusUnauthorized, "UNAUTHENTICATED", "login required")
			return
		}
		if !s.IsAdmin() {
			unauthorized(w, http.StatusForbidden, "NOT_ADMIN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithSession(ctx context.Context, s *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (*auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*auth.Session)
	return s, ok && s != nil
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func unauthorized(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
