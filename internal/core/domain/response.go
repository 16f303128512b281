package domain

import (
	"time"

	"github.com/google/uuid"
)

type SurveyResponse struct {
	ID              uuid.UUID `json:"id"`
	SurveyID        uuid.UUID `json:"survey_id"`
	OptionID        uuid.UUID `json:"option_id"`
	RespondentEmail *string   `json:"respondent_email,omitempty"`
	RespondedAt     time.Time `json:"responded_at"`
}
