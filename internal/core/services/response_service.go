package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type responseService struct {
	surveyRepo   ports.SurveyRepository
	responseRepo ports.ResponseRepository
}

func NewResponseService(surveyRepo ports.SurveyRepository, responseRepo ports.ResponseRepository) ports.ResponseService {
	return &responseService{
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
	}
}

func (s *responseService) Record(ctx context.Context, input ports.RecordResponseInput) error {
	survey, err := s.surveyRepo.GetActive(ctx, input.SurveyID)
	if err != nil {
		return err
	}

	if input.OptionID == uuid.Nil {
		return domain.ErrOptionRequired
	}
	if _, ok := survey.Option(input.OptionID); !ok {
		return domain.ErrOptionNotFound
	}

	response := &domain.SurveyResponse{
		ID:          uuid.New(),
		SurveyID:    survey.ID,
		OptionID:    input.OptionID,
		RespondedAt: time.Now().UTC(),
	}
	if email := strings.TrimSpace(input.RespondentEmail); email != "" {
		response.RespondentEmail = &email
	}

	return s.responseRepo.Save(ctx, response)
}

func (s *responseService) Results(ctx context.Context, surveyID, requestingUserID uuid.UUID) (*domain.SurveyResults, error) {
	survey, err := s.surveyRepo.GetOwned(ctx, surveyID, requestingUserID)
	if err != nil {
		return nil, err
	}

	counts, err := s.responseRepo.CountByOption(ctx, survey.ID)
	if err != nil {
		return nil, err
	}

	return domain.NewSurveyResults(survey, counts), nil
}
