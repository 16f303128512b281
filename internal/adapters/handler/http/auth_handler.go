package http

import (
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    *SessionMiddleware
	renderer    *Renderer
}

func NewAuthHandler(authService ports.AuthService, sessions *SessionMiddleware, renderer *Renderer) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		renderer:    renderer,
	}
}

type credentialsForm struct {
	Email string
}

func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if CurrentUser(r.Context()) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "register", credentialsForm{})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := credentialsForm{Email: r.PostFormValue("email")}

	_, err := h.authService.Register(r.Context(), form.Email, r.PostFormValue("password"))
	if err != nil {
		if msg, ok := formMessage(err); ok {
			h.renderer.Render(w, r, http.StatusOK, "register", form, msg)
			return
		}
		slog.Error("failed to register user", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setFlash(w, r, "Registration successful! Please login.")
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login", credentialsForm{})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := credentialsForm{Email: r.PostFormValue("email")}

	_, token, err := h.authService.Login(r.Context(), form.Email, r.PostFormValue("password"))
	if err != nil {
		if msg, ok := formMessage(err); ok {
			h.renderer.Render(w, r, http.StatusOK, "login", form, msg)
			return
		}
		slog.Error("failed to log user in", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.sessions.setSessionCookie(w, token)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to revoke session", "error", err)
		}
	}

	h.sessions.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
