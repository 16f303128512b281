package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type surveyService struct {
	repo ports.SurveyRepository
}

func NewSurveyService(repo ports.SurveyRepository) ports.SurveyService {
	return &surveyService{
		repo: repo,
	}
}

func (s *surveyService) Create(ctx context.Context, input ports.CreateSurveyInput) (*domain.Survey, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	candidates := input.Options
	if len(candidates) > domain.MaxOptionSlots {
		candidates = candidates[:domain.MaxOptionSlots]
	}

	surveyID := uuid.New()
	now := time.Now().UTC()

	survey := &domain.Survey{
		ID:          surveyID,
		OwnerID:     input.OwnerID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, optText := range candidates {
		optText = strings.TrimSpace(optText)
		if optText == "" {
			continue
		}
		survey.Options = append(survey.Options, domain.SurveyOption{
			ID:       uuid.New(),
			SurveyID: surveyID,
			Text:     optText,
			Order:    len(survey.Options) + 1,
		})
	}

	if len(survey.Options) < domain.MinOptions {
		return nil, domain.ErrInsufficientOptions
	}

	if err := s.repo.Save(ctx, survey); err != nil {
		return nil, err
	}

	return survey, nil
}

func (s *surveyService) ToggleActive(ctx context.Context, surveyID, requestingUserID uuid.UUID) (*domain.Survey, error) {
	return s.repo.ToggleActive(ctx, surveyID, requestingUserID)
}

func (s *surveyService) ListOwned(ctx context.Context, userID uuid.UUID) ([]*domain.Survey, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *surveyService) GetPublic(ctx context.Context, surveyID uuid.UUID) (*domain.Survey, error) {
	return s.repo.GetActive(ctx, surveyID)
}

func (s *surveyService) Delete(ctx context.Context, surveyID, requestingUserID uuid.UUID) error {
	return s.repo.Delete(ctx, surveyID, requestingUserID)
}
