package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

// SurveyRepository persists surveys together with their options. Every method
// scoped to an owner reports domain.ErrSurveyNotFound when the survey is absent
// or belongs to someone else.
type SurveyRepository interface {
	// Save stores the survey and all of its options atomically.
	Save(ctx context.Context, survey *domain.Survey) error
	GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*domain.Survey, error)
	// GetActive reports domain.ErrSurveyUnavailable for absent and inactive surveys alike.
	GetActive(ctx context.Context, id uuid.UUID) (*domain.Survey, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Survey, error)
	ToggleActive(ctx context.Context, id, ownerID uuid.UUID) (*domain.Survey, error)
	// Delete removes responses, options and the survey in one transaction.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

type CreateSurveyInput struct {
	OwnerID     uuid.UUID
	Title       string
	Description string
	Options     []string
}

type SurveyService interface {
	Create(ctx context.Context, input CreateSurveyInput) (*domain.Survey, error)
	ToggleActive(ctx context.Context, surveyID, requestingUserID uuid.UUID) (*domain.Survey, error)
	ListOwned(ctx context.Context, userID uuid.UUID) ([]*domain.Survey, error)
	GetPublic(ctx context.Context, surveyID uuid.UUID) (*domain.Survey, error)
	Delete(ctx context.Context, surveyID, requestingUserID uuid.UUID) error
}
