package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/vncsmyrnk/survey/internal/adapters/handler/http"
	"github.com/vncsmyrnk/survey/internal/adapters/password"
	repo "github.com/vncsmyrnk/survey/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/survey/internal/core/services"
)

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	pgPassword := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(pgPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	DBContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()

	ctx := context.Background()
	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	surveyRepo := repo.NewSurveyRepository(db)
	responseRepo := repo.NewResponseRepository(db)

	surveySvc := services.NewSurveyService(surveyRepo)
	responseSvc := services.NewResponseService(surveyRepo, responseRepo)
	authSvc := services.NewAuthService(
		repo.NewUserRepository(db),
		repo.NewSessionRepository(db),
		password.NewBcryptHasher(bcrypt.MinCost),
		"test-secret",
		time.Hour,
	)

	renderer, err := handler.NewRenderer()
	require.NoError(t, err)
	sessions := handler.NewSessionMiddleware(authSvc, false, time.Hour)

	router := handler.NewHandler(
		handler.NewAuthHandler(authSvc, sessions, renderer),
		handler.NewSurveyHandler(surveySvc, responseSvc, renderer),
		handler.NewResponseHandler(surveySvc, responseSvc, renderer),
		handler.NewHealthHandler(db),
		sessions,
		renderer,
		handler.RouterOptions{RequestTimeout: 10 * time.Second},
	)

	return &TestApp{
		DB:          db,
		Server:      httptest.NewServer(router),
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

// NewBrowser returns a client with its own cookie jar that reports redirects
// instead of following them.
func (app *TestApp) NewBrowser(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (app *TestApp) Get(t *testing.T, client *http.Client, path string) (*http.Response, string) {
	t.Helper()

	resp, err := client.Get(app.Server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (app *TestApp) Post(t *testing.T, client *http.Client, path string, form url.Values) (*http.Response, string) {
	t.Helper()

	resp, err := client.PostForm(app.Server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func (app *TestApp) SignUp(t *testing.T, client *http.Client, email string) {
	t.Helper()

	creds := url.Values{"email": {email}, "password": {"password123"}}
	resp, _ := app.Post(t, client, "/register", creds)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, _ = app.Post(t, client, "/login", creds)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func (app *TestApp) CreateSurvey(t *testing.T, client *http.Client, title string, options ...string) uuid.UUID {
	t.Helper()

	form := url.Values{"title": {title}}
	for i, opt := range options {
		form.Set(fmt.Sprintf("option_%d", i+1), opt)
	}
	resp, _ := app.Post(t, client, "/survey/create", form)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var id uuid.UUID
	err := app.DB.QueryRow(`SELECT id FROM surveys WHERE title = $1 ORDER BY created_at DESC LIMIT 1`, title).Scan(&id)
	require.NoError(t, err)
	return id
}

func (app *TestApp) OptionID(t *testing.T, surveyID uuid.UUID, text string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := app.DB.QueryRow(`SELECT id FROM survey_options WHERE survey_id = $1 AND option_text = $2`, surveyID, text).Scan(&id)
	require.NoError(t, err)
	return id
}
