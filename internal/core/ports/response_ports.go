package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

type ResponseRepository interface {
	Save(ctx context.Context, response *domain.SurveyResponse) error
	// CountByOption returns every option of the survey ordered by option order,
	// including options nobody picked.
	CountByOption(ctx context.Context, surveyID uuid.UUID) ([]domain.OptionResult, error)
}

type RecordResponseInput struct {
	SurveyID        uuid.UUID
	OptionID        uuid.UUID
	RespondentEmail string
}

type ResponseService interface {
	Record(ctx context.Context, input RecordResponseInput) error
	Results(ctx context.Context, surveyID, requestingUserID uuid.UUID) (*domain.SurveyResults, error)
}
