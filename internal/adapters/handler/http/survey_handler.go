package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

// SurveyHandler serves the owner-facing pages. Every route it backs sits
// behind RequireUser.
type SurveyHandler struct {
	surveyService   ports.SurveyService
	responseService ports.ResponseService
	renderer        *Renderer
}

func NewSurveyHandler(surveyService ports.SurveyService, responseService ports.ResponseService, renderer *Renderer) *SurveyHandler {
	return &SurveyHandler{
		surveyService:   surveyService,
		responseService: responseService,
		renderer:        renderer,
	}
}

type dashboardView struct {
	Surveys []*domain.Survey
	BaseURL string
}

type createSurveyForm struct {
	Title       string
	Description string
	Options     []string
}

func (h *SurveyHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	surveys, err := h.surveyService.ListOwned(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list surveys", "user_id", user.ID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "dashboard", dashboardView{
		Surveys: surveys,
		BaseURL: baseURL(r),
	})
}

func (h *SurveyHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "create_survey", createSurveyForm{
		Options: make([]string, domain.MaxOptionSlots),
	})
}

func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	form := createSurveyForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Options:     make([]string, domain.MaxOptionSlots),
	}
	for i := range form.Options {
		form.Options[i] = r.PostFormValue(fmt.Sprintf("option_%d", i+1))
	}

	_, err := h.surveyService.Create(r.Context(), ports.CreateSurveyInput{
		OwnerID:     CurrentUser(r.Context()).ID,
		Title:       form.Title,
		Description: form.Description,
		Options:     form.Options,
	})
	if err != nil {
		if msg, ok := formMessage(err); ok {
			h.renderer.Render(w, r, http.StatusOK, "create_survey", form, msg)
			return
		}
		slog.Error("failed to create survey", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	setFlash(w, r, "Survey created successfully!")
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *SurveyHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := h.ownedSurveyID(w, r)
	if !ok {
		return
	}

	_, err := h.surveyService.ToggleActive(r.Context(), surveyID, CurrentUser(r.Context()).ID)
	if err != nil && !h.handleOwnerError(w, r, err, "failed to toggle survey") {
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := h.ownedSurveyID(w, r)
	if !ok {
		return
	}

	err := h.surveyService.Delete(r.Context(), surveyID, CurrentUser(r.Context()).ID)
	if err != nil {
		if !h.handleOwnerError(w, r, err, "failed to delete survey") {
			return
		}
	} else {
		setFlash(w, r, "Survey deleted")
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *SurveyHandler) Results(w http.ResponseWriter, r *http.Request) {
	surveyID, ok := h.ownedSurveyID(w, r)
	if !ok {
		return
	}

	results, err := h.responseService.Results(r.Context(), surveyID, CurrentUser(r.Context()).ID)
	if err != nil {
		if h.handleOwnerError(w, r, err, "failed to load results") {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
		}
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "survey_results", results)
}

// ownedSurveyID parses the {id} path parameter. A malformed id is handled
// like a survey the user does not own.
func (h *SurveyHandler) ownedSurveyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		setFlash(w, r, "Survey not found")
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return uuid.Nil, false
	}
	return id, true
}

// handleOwnerError flashes the not-found message and reports true so the
// caller can redirect. Any other error is answered with a 500.
func (h *SurveyHandler) handleOwnerError(w http.ResponseWriter, r *http.Request, err error, logMsg string) bool {
	if errors.Is(err, domain.ErrSurveyNotFound) {
		setFlash(w, r, "Survey not found")
		return true
	}
	slog.Error(logMsg, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
	return false
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
