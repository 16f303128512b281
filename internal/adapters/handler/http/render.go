package http

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/survey/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashCookieName = "flash"

var pages = []string{
	"login",
	"register",
	"dashboard",
	"create_survey",
	"survey_response",
	"survey_thanks",
	"survey_results",
	"help",
	"contact",
}

// Renderer executes page templates, each wrapped in the shared layout.
type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"percent": func(p float64) string {
			return fmt.Sprintf("%.1f", p)
		},
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

type pageData struct {
	User    *domain.User
	Flashes []string
	Data    any
}

// Render writes page with the given status. Pending flash messages from earlier
// redirects are shown before any passed in messages and are then cleared.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data any, messages ...string) {
	tmpl, ok := rd.templates[page]
	if !ok {
		slog.Error("unknown template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	flashes := popFlashes(w, r)
	flashes = append(flashes, messages...)

	var buf bytes.Buffer
	err := tmpl.ExecuteTemplate(&buf, "layout", pageData{
		User:    CurrentUser(r.Context()),
		Flashes: flashes,
		Data:    data,
	})
	if err != nil {
		slog.Error("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Static serves a page that needs no data.
func (rd *Renderer) Static(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rd.Render(w, r, http.StatusOK, page, nil)
	}
}

// setFlash queues messages for the next rendered page. Any messages already
// queued by the current request's cookie are kept.
func setFlash(w http.ResponseWriter, r *http.Request, messages ...string) {
	queued := readFlashes(r)
	queued = append(queued, messages...)

	raw, err := json.Marshal(queued)
	if err != nil {
		slog.Error("failed to encode flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

func popFlashes(w http.ResponseWriter, r *http.Request) []string {
	flashes := readFlashes(r)
	if len(flashes) > 0 {
		http.SetCookie(w, &http.Cookie{Name: flashCookieName, Path: "/", MaxAge: -1})
	}
	return flashes
}

func readFlashes(r *http.Request) []string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var flashes []string
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
