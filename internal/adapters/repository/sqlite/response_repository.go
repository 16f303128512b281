package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
	"github.com/vncsmyrnk/survey/internal/core/ports"
)

type responseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) ports.ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Save(ctx context.Context, response *domain.SurveyResponse) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO survey_responses (id, survey_id, option_id, respondent_email, response_date)
		VALUES (?, ?, ?, ?, ?)
	`, response.ID, response.SurveyID, response.OptionID, response.RespondentEmail, response.RespondedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrOptionNotFound
		}
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

func (r *responseRepository) CountByOption(ctx context.Context, surveyID uuid.UUID) ([]domain.OptionResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT so.id, so.option_text, so.option_order, COUNT(sr.id) AS vote_count
		FROM survey_options so
		LEFT JOIN survey_responses sr ON sr.option_id = so.id
		WHERE so.survey_id = ?
		GROUP BY so.id, so.option_text, so.option_order
		ORDER BY so.option_order
	`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	defer rows.Close()

	var results []domain.OptionResult
	for rows.Next() {
		var res domain.OptionResult
		if err := rows.Scan(&res.OptionID, &res.Text, &res.Order, &res.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan option result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating option results: %w", err)
	}
	return results, nil
}
