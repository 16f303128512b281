package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type surveyRepository struct {
	db *sql.DB
}

func NewSurveyRepository(db *sql.DB) ports.SurveyRepository {
	return &surveyRepository{
		db: db,
	}
}

func (r *surveyRepository) Save(ctx context.Context, survey *domain.Survey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	querySurvey := `
		INSERT INTO surveys (id, user_id, title, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, querySurvey,
		survey.ID, survey.OwnerID, survey.Title, survey.Description, survey.IsActive, survey.CreatedAt, survey.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}

	queryOption := `
		INSERT INTO survey_options (id, survey_id, option_text, option_order)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("failed to prepare option statement: %w", err)
	}
	defer stmt.Close()

	for _, opt := range survey.Options {
		_, err = stmt.ExecContext(ctx, opt.ID, opt.SurveyID, opt.Text, opt.Order)
		if err != nil {
			return fmt.Errorf("failed to insert option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *surveyRepository) GetOwned(ctx context.Context, id, ownerID uuid.UUID) (*domain.Survey, error) {
	query := `
		SELECT id, user_id, title, description, is_active, created_at, updated_at
		FROM surveys
		WHERE id = $1 AND user_id = $2
	`
	return r.getSurvey(ctx, domain.ErrSurveyNotFound, query, id, ownerID)
}

func (r *surveyRepository) GetActive(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	query := `
		SELECT id, user_id, title, description, is_active, created_at, updated_at
		FROM surveys
		WHERE id = $1 AND is_active
	`
	return r.getSurvey(ctx, domain.ErrSurveyUnavailable, query, id)
}

func (r *surveyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Survey, error) {
	query := `
		SELECT s.id, s.user_id, s.title, s.description, s.is_active, s.created_at, s.updated_at,
		       COUNT(sr.id)
		FROM surveys s
		LEFT JOIN survey_responses sr ON sr.survey_id = s.id
		WHERE s.user_id = $1
		GROUP BY s.id
		ORDER BY s.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	defer rows.Close()

	var surveys []*domain.Survey
	for rows.Next() {
		var survey domain.Survey
		if err := rows.Scan(
			&survey.ID, &survey.OwnerID, &survey.Title, &survey.Description, &survey.IsActive,
			&survey.CreatedAt, &survey.UpdatedAt, &survey.ResponseCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan survey: %w", err)
		}
		surveys = append(surveys, &survey)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating surveys: %w", err)
	}

	for _, survey := range surveys {
		options, err := r.fetchOptions(ctx, survey.ID)
		if err != nil {
			return nil, err
		}
		survey.Options = options
	}

	return surveys, nil
}

func (r *surveyRepository) ToggleActive(ctx context.Context, id, ownerID uuid.UUID) (*domain.Survey, error) {
	query := `
		UPDATE surveys
		SET is_active = NOT is_active, updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, is_active, created_at, updated_at
	`
	return r.getSurvey(ctx, domain.ErrSurveyNotFound, query, id, ownerID, time.Now().UTC())
}

func (r *surveyRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM surveys WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, ownerID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSurveyNotFound
		}
		return fmt.Errorf("failed to lock survey: %w", err)
	}

	statements := []struct {
		query string
		what  string
	}{
		{`DELETE FROM survey_responses WHERE survey_id = $1`, "responses"},
		{`DELETE FROM survey_options WHERE survey_id = $1`, "options"},
		{`DELETE FROM surveys WHERE id = $1`, "survey"},
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", stmt.what, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *surveyRepository) getSurvey(ctx context.Context, notFound error, query string, args ...any) (*domain.Survey, error) {
	var survey domain.Survey
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&survey.ID, &survey.OwnerID, &survey.Title, &survey.Description, &survey.IsActive,
		&survey.CreatedAt, &survey.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	options, err := r.fetchOptions(ctx, survey.ID)
	if err != nil {
		return nil, err
	}
	survey.Options = options

	return &survey, nil
}

func (r *surveyRepository) fetchOptions(ctx context.Context, surveyID uuid.UUID) ([]domain.SurveyOption, error) {
	query := `
		SELECT id, survey_id, option_text, option_order
		FROM survey_options
		WHERE survey_id = $1
		ORDER BY option_order
	`
	rows, err := r.db.QueryContext(ctx, query, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey options: %w", err)
	}
	defer rows.Close()

	var options []domain.SurveyOption
	for rows.Next() {
		var opt domain.SurveyOption
		if err := rows.Scan(&opt.ID, &opt.SurveyID, &opt.Text, &opt.Order); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}
	return options, nil
}
