package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinOptions = 2
	// MaxOptionSlots is the number of option inputs offered by the create form.
	// Candidates past this slot are never considered.
	MaxOptionSlots = 5
)

type Survey struct {
	ID            uuid.UUID      `json:"id"`
	OwnerID       uuid.UUID      `json:"owner_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	IsActive      bool           `json:"is_active"`
	Options       []SurveyOption `json:"options"`
	ResponseCount int64          `json:"response_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type SurveyOption struct {
	ID       uuid.UUID `json:"id"`
	SurveyID uuid.UUID `json:"survey_id"`
	Text     string    `json:"text"`
	Order    int       `json:"order"`
}

// Option returns the option with the given id if it belongs to the survey.
func (s *Survey) Option(id uuid.UUID) (SurveyOption, bool) {
	for _, opt := range s.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return SurveyOption{}, false
}
