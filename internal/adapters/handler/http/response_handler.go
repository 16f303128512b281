package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

const surveyUnavailableMessage = "Survey not found or inactive"

// ResponseHandler serves the public survey page. It never looks at the
// session; respondents are anonymous.
type ResponseHandler struct {
	surveyService   ports.SurveyService
	responseService ports.ResponseService
	renderer        *Renderer
}

func NewResponseHandler(surveyService ports.SurveyService, responseService ports.ResponseService, renderer *Renderer) *ResponseHandler {
	return &ResponseHandler{
		surveyService:   surveyService,
		responseService: responseService,
		renderer:        renderer,
	}
}

type responseForm struct {
	Survey *domain.Survey
	Email  string
}

func (h *ResponseHandler) Show(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.publicSurvey(w, r)
	if !ok {
		return
	}
	h.renderer.Render(w, r, http.StatusOK, "survey_response", responseForm{Survey: survey})
}

func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	survey, ok := h.publicSurvey(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	form := responseForm{Survey: survey, Email: r.PostFormValue("email")}

	var optionID uuid.UUID
	if raw := r.PostFormValue("option_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Option not found", http.StatusNotFound)
			return
		}
		optionID = parsed
	}

	err := h.responseService.Record(r.Context(), ports.RecordResponseInput{
		SurveyID:        survey.ID,
		OptionID:        optionID,
		RespondentEmail: form.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOptionRequired):
			msg, _ := formMessage(err)
			h.renderer.Render(w, r, http.StatusOK, "survey_response", form, msg)
		case errors.Is(err, domain.ErrOptionNotFound):
			http.Error(w, "Option not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrSurveyUnavailable):
			http.Error(w, surveyUnavailableMessage, http.StatusNotFound)
		default:
			slog.Error("failed to record response", "survey_id", survey.ID, "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "survey_thanks", survey)
}

func (h *ResponseHandler) publicSurvey(w http.ResponseWriter, r *http.Request) (*domain.Survey, bool) {
	surveyID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, surveyUnavailableMessage, http.StatusNotFound)
		return nil, false
	}

	survey, err := h.surveyService.GetPublic(r.Context(), surveyID)
	if err != nil {
		if errors.Is(err, domain.ErrSurveyUnavailable) {
			http.Error(w, surveyUnavailableMessage, http.StatusNotFound)
			return nil, false
		}
		slog.Error("failed to load survey", "survey_id", surveyID, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, false
	}
	return survey, true
}
