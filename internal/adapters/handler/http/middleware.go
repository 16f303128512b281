package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type contextKey string

const UserKey contextKey = "user"

const sessionCookieName = "session"

// CurrentUser returns the user attached by SessionMiddleware, or nil.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(UserKey).(*domain.User)
	return user
}

type SessionMiddleware struct {
	authService  ports.AuthService
	cookieSecure bool
	sessionTTL   time.Duration
}

func NewSessionMiddleware(authService ports.AuthService, cookieSecure bool, sessionTTL time.Duration) *SessionMiddleware {
	return &SessionMiddleware{
		authService:  authService,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// LoadUser resolves the session cookie, if any, and attaches the user to the
// request context. Stale cookies are cleared.
func (m *SessionMiddleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.authService.Authenticate(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				slog.Error("failed to authenticate session", "error", err)
			}
			m.clearSessionCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser redirects anonymous requests to the login page.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *SessionMiddleware) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.sessionTTL.Seconds()),
	})
}

func (m *SessionMiddleware) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
