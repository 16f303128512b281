package sqlite

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

// The pool holds a single connection, so no query may run while another
// result set or transaction is still open on it.
type surveyRepository struct {
	db *sql.DB
}

func NewSurveyRepository(db *sql.DB) ports.SurveyRepository {
	return &surveyRepository{db: db}
}

const surveyColumns = `id, user_id, title, description, is_active, created_at, updated_at`

func (r *surveyRepository) Save(ctx context.Context, survey *domain.Survey) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO surveys (id, user_id, title, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, survey.ID, survey.OwnerID, survey.Title, survey.Description, survey.IsActive, survey.CreatedAt, survey.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert survey: %w", err)
	}

	for _, opt := range survey.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO survey_options (id, survey_id, option_text, option_order)
			VALUES (?, ?, ?, ?)
		`, opt.ID, opt.SurveyID, opt.Text, opt.Order)
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
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = ? AND user_id = ?`
	return r.getSurvey(ctx, domain.ErrSurveyNotFound, query, id, ownerID)
}

func (r *surveyRepository) GetActive(ctx context.Context, id uuid.UUID) (*domain.Survey, error) {
	query := `SELECT ` + surveyColumns + ` FROM surveys WHERE id = ? AND is_active = 1`
	return r.getSurvey(ctx, domain.ErrSurveyUnavailable, query, id)
}

func (r *surveyRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Survey, error) {
	surveys, err := r.listByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
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

func (r *surveyRepository) listByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Survey, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.title, s.description, s.is_active, s.created_at, s.updated_at,
		       COUNT(sr.id)
		FROM surveys s
		LEFT JOIN survey_responses sr ON sr.survey_id = s.id
		WHERE s.user_id = ?
		GROUP BY s.id
		ORDER BY s.created_at DESC
	`, ownerID)
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
	return surveys, nil
}

func (r *surveyRepository) ToggleActive(ctx context.Context, id, ownerID uuid.UUID) (*domain.Survey, error) {
	// RETURNING columns carry no declared type, which would leave timestamps
	// as plain text, so the updated row is read back separately.
	res, err := r.db.ExecContext(ctx, `
		UPDATE surveys
		SET is_active = NOT is_active, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, time.Now().UTC(), id, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle survey: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to toggle survey: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrSurveyNotFound
	}

	return r.GetOwned(ctx, id, ownerID)
}

func (r *surveyRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM surveys WHERE id = ? AND user_id = ?`, id, ownerID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrSurveyNotFound
		}
		return fmt.Errorf("failed to find survey: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM survey_responses WHERE survey_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM survey_options WHERE survey_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM surveys WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
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
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, survey_id, option_text, option_order
		FROM survey_options
		WHERE survey_id = ?
		ORDER BY option_order
	`, surveyID)
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
