package middleware

import (
	"net/http"

	"socialgraph/internal/handlers"
	"socialgraph/internal/services"
)

const sessionCookieName = "session_token"

// AuthMiddleware resolves the session cookie to a user for downstream
// handlers. Resolution and enforcement are split so public endpoints can
// still see who is calling when a session happens to be present.
type AuthMiddleware struct {
	authService services.AuthServiceInterface
}

func NewAuthMiddleware(authService services.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

func sessionToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// Authenticate puts the session's user into the request context when the
// cookie resolves. Missing or stale sessions pass through untouched; the
// guard lives in RequireAuth.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := sessionToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.ValidateSession(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetUserInContext(r.Context(), user)))
	})
}

// RequireAuth rejects requests that reached this point without a resolved
// user.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			denyJSON(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
