package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, CreateSchema(context.Background(), db))
	return db
}

func createTestUser(t *testing.T, db *sql.DB) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()),
		PasswordHash: "hashed",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func newTestSurvey(ownerID uuid.UUID, title string, createdAt time.Time, options ...string) *domain.Survey {
	survey := &domain.Survey{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		IsActive:  true,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	for i, text := range options {
		survey.Options = append(survey.Options, domain.SurveyOption{
			ID:       uuid.New(),
			SurveyID: survey.ID,
			Text:     text,
			Order:    i + 1,
		})
	}
	return survey
}

func saveResponse(t *testing.T, db *sql.DB, survey *domain.Survey, optionIndex int) {
	t.Helper()

	err := NewResponseRepository(db).Save(context.Background(), &domain.SurveyResponse{
		ID:          uuid.New(),
		SurveyID:    survey.ID,
		OptionID:    survey.Options[optionIndex].ID,
		RespondedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func countRows(t *testing.T, db *sql.DB, table string, surveyID uuid.UUID) int {
	t.Helper()

	column := "survey_id"
	if table == "surveys" {
		column = "id"
	}
	var n int
	err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", table, column), surveyID).Scan(&n)
	require.NoError(t, err)
	return n
}

func TestSurveyRepositorySaveAndGetOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Lunch?", time.Now().UTC(), "Pizza", "Salad", "Soup")
	survey.Description = "Friday team lunch"
	require.NoError(t, repo.Save(ctx, survey))

	got, err := repo.GetOwned(ctx, survey.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lunch?", got.Title)
	assert.Equal(t, "Friday team lunch", got.Description)
	assert.True(t, got.IsActive)
	require.Len(t, got.Options, 3)
	for i, text := range []string{"Pizza", "Salad", "Soup"} {
		assert.Equal(t, text, got.Options[i].Text)
		assert.Equal(t, i+1, got.Options[i].Order)
	}

	other := createTestUser(t, db)
	_, err = repo.GetOwned(ctx, survey.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrSurveyNotFound)

	_, err = repo.GetOwned(ctx, uuid.New(), owner.ID)
	assert.ErrorIs(t, err, domain.ErrSurveyNotFound)
}

func TestSurveyRepositorySaveIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Broken", time.Now().UTC(), "A", "B")
	survey.Options[1].Order = 1

	err := repo.Save(context.Background(), survey)
	require.Error(t, err)

	assert.Equal(t, 0, countRows(t, db, "surveys", survey.ID))
	assert.Equal(t, 0, countRows(t, db, "survey_options", survey.ID))
}

func TestSurveyRepositoryGetActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Public", time.Now().UTC(), "Yes", "No")
	require.NoError(t, repo.Save(ctx, survey))

	got, err := repo.GetActive(ctx, survey.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options, 2)

	_, err = repo.ToggleActive(ctx, survey.ID, owner.ID)
	require.NoError(t, err)

	_, errInactive := repo.GetActive(ctx, survey.ID)
	_, errMissing := repo.GetActive(ctx, uuid.New())
	assert.ErrorIs(t, errInactive, domain.ErrSurveyUnavailable)
	assert.ErrorIs(t, errMissing, domain.ErrSurveyUnavailable)
	assert.Equal(t, errMissing, errInactive)
}

func TestSurveyRepositoryToggleActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Toggle", time.Now().UTC(), "A", "B")
	require.NoError(t, repo.Save(ctx, survey))

	toggled, err := repo.ToggleActive(ctx, survey.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)
	assert.Len(t, toggled.Options, 2)

	toggled, err = repo.ToggleActive(ctx, survey.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	other := createTestUser(t, db)
	_, err = repo.ToggleActive(ctx, survey.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrSurveyNotFound)

	got, err := repo.GetOwned(ctx, survey.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestSurveyRepositoryListByOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	base := time.Now().UTC().Add(-time.Hour)
	older := newTestSurvey(owner.ID, "Older", base, "A", "B")
	newer := newTestSurvey(owner.ID, "Newer", base.Add(time.Minute), "C", "D", "E")
	foreign := newTestSurvey(other.ID, "Foreign", base.Add(2*time.Minute), "F", "G")
	for _, s := range []*domain.Survey{older, newer, foreign} {
		require.NoError(t, repo.Save(ctx, s))
	}
	saveResponse(t, db, older, 0)
	saveResponse(t, db, older, 1)

	surveys, err := repo.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, surveys, 2)

	assert.Equal(t, newer.ID, surveys[0].ID)
	assert.Len(t, surveys[0].Options, 3)
	assert.Equal(t, int64(0), surveys[0].ResponseCount)

	assert.Equal(t, older.ID, surveys[1].ID)
	assert.Len(t, surveys[1].Options, 2)
	assert.Equal(t, int64(2), surveys[1].ResponseCount)

	none, err := repo.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSurveyRepositoryDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Delete me", time.Now().UTC(), "A", "B")
	kept := newTestSurvey(owner.ID, "Keep me", time.Now().UTC(), "C", "D")
	require.NoError(t, repo.Save(ctx, survey))
	require.NoError(t, repo.Save(ctx, kept))
	saveResponse(t, db, survey, 0)
	saveResponse(t, db, survey, 1)
	saveResponse(t, db, kept, 0)

	other := createTestUser(t, db)
	assert.ErrorIs(t, repo.Delete(ctx, survey.ID, other.ID), domain.ErrSurveyNotFound)
	assert.Equal(t, 1, countRows(t, db, "surveys", survey.ID))

	require.NoError(t, repo.Delete(ctx, survey.ID, owner.ID))

	assert.Equal(t, 0, countRows(t, db, "surveys", survey.ID))
	assert.Equal(t, 0, countRows(t, db, "survey_options", survey.ID))
	assert.Equal(t, 0, countRows(t, db, "survey_responses", survey.ID))

	assert.Equal(t, 1, countRows(t, db, "surveys", kept.ID))
	assert.Equal(t, 2, countRows(t, db, "survey_options", kept.ID))
	assert.Equal(t, 1, countRows(t, db, "survey_responses", kept.ID))

	assert.ErrorIs(t, repo.Delete(ctx, survey.ID, owner.ID), domain.ErrSurveyNotFound)
}

func TestSurveyRepositoryCascadeFromSchema(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "FK", time.Now().UTC(), "A", "B")
	require.NoError(t, repo.Save(ctx, survey))
	saveResponse(t, db, survey, 0)
	saveResponse(t, db, survey, 1)

	// Deleting one option drops only its own responses.
	_, err := db.Exec(`DELETE FROM survey_options WHERE id = ?`, survey.Options[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, db, "survey_responses", survey.ID))
	assert.Equal(t, 1, countRows(t, db, "surveys", survey.ID))

	_, err = db.Exec(`DELETE FROM surveys WHERE id = ?`, survey.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, countRows(t, db, "survey_options", survey.ID))
	assert.Equal(t, 0, countRows(t, db, "survey_responses", survey.ID))
}

func TestResponseRepositoryCountByOption(t *testing.T) {
	db := setupTestDB(t)
	surveys := NewSurveyRepository(db)
	responses := NewResponseRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Counts", time.Now().UTC(), "Opt1", "Opt2", "Opt3")
	require.NoError(t, surveys.Save(ctx, survey))

	saveResponse(t, db, survey, 0)
	saveResponse(t, db, survey, 0)
	saveResponse(t, db, survey, 1)

	results, err := responses.CountByOption(ctx, survey.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	expected := []struct {
		text  string
		count int64
	}{
		{"Opt1", 2},
		{"Opt2", 1},
		{"Opt3", 0},
	}
	for i, want := range expected {
		assert.Equal(t, survey.Options[i].ID, results[i].OptionID)
		assert.Equal(t, want.text, results[i].Text)
		assert.Equal(t, i+1, results[i].Order)
		assert.Equal(t, want.count, results[i].VoteCount)
	}
}

func TestResponseRepositoryStoresEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db)
	survey := newTestSurvey(owner.ID, "Email", time.Now().UTC(), "A", "B")
	require.NoError(t, NewSurveyRepository(db).Save(ctx, survey))

	email := "respondent@test.com"
	err := NewResponseRepository(db).Save(ctx, &domain.SurveyResponse{
		ID:              uuid.New(),
		SurveyID:        survey.ID,
		OptionID:        survey.Options[0].ID,
		RespondentEmail: &email,
		RespondedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	saveResponse(t, db, survey, 1)

	var withEmail, withoutEmail int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM survey_responses WHERE respondent_email = ?`, email).Scan(&withEmail))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM survey_responses WHERE respondent_email IS NULL`).Scan(&withoutEmail))
	assert.Equal(t, 1, withEmail)
	assert.Equal(t, 1, withoutEmail)
}

func TestResponseRepositoryRejectsForeignOption(t *testing.T) {
	db := setupTestDB(t)
	surveys := NewSurveyRepository(db)
	ctx := context.Background()

	owner := createTestUser(t, db)
	first := newTestSurvey(owner.ID, "First", time.Now().UTC(), "A", "B")
	second := newTestSurvey(owner.ID, "Second", time.Now().UTC(), "C", "D")
	require.NoError(t, surveys.Save(ctx, first))
	require.NoError(t, surveys.Save(ctx, second))

	err := NewResponseRepository(db).Save(ctx, &domain.SurveyResponse{
		ID:          uuid.New(),
		SurveyID:    first.ID,
		OptionID:    second.Options[0].ID,
		RespondedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, domain.ErrOptionNotFound)
	assert.Equal(t, 0, countRows(t, db, "survey_responses", first.ID))
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)

	byEmail, err := repo.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "hashed", byEmail.PasswordHash)
	assert.Nil(t, byEmail.LastLoginAt)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)

	duplicate := &domain.User{ID: uuid.New(), Email: user.Email, PasswordHash: "x", CreatedAt: time.Now().UTC()}
	assert.ErrorIs(t, repo.Create(ctx, duplicate), domain.ErrEmailTaken)

	loginAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, loginAt))

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.LastLoginAt)
	assert.True(t, loginAt.Equal(*byID.LastLoginAt))

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, uuid.New(), loginAt), domain.ErrUserNotFound)
}

func TestSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db)
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.True(t, got.Valid(now))

	require.NoError(t, repo.Revoke(ctx, session.ID))
	got, err = repo.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.Revoked)
	assert.False(t, got.Valid(now))

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
