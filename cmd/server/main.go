package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/vncsmyrnk/survey/internal/adapters/handler/http"
	"github.com/vncsmyrnk/survey/internal/adapters/password"
	"github.com/vncsmyrnk/survey/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/survey/internal/adapters/repository/sqlite"
	"github.com/vncsmyrnk/survey/internal/config"
	"github.com/vncsmyrnk/survey/internal/core/ports"
	"github.com/vncsmyrnk/survey/internal/core/services"
)

type repositories struct {
	surveys   ports.SurveyRepository
	responses ports.ResponseRepository
	users     ports.UserRepository
	sessions  ports.SessionRepository
}

func main() {
	var addr, configPath string
	flag.StringVar(&addr, "addr", "", "Address to listen on (overrides BIND_ADDRESS)")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Server.BindAddress = addr
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if cfg.UsesDefaultSecret() {
		slog.Warn("SECRET_KEY is not set, using the development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, repos, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database ready", "driver", cfg.Database.Driver)

	surveyService := services.NewSurveyService(repos.surveys)
	responseService := services.NewResponseService(repos.surveys, repos.responses)
	authService := services.NewAuthService(
		repos.users,
		repos.sessions,
		password.NewBcryptHasher(bcrypt.DefaultCost),
		cfg.Auth.SecretKey,
		cfg.Auth.SessionTTL,
	)

	renderer, err := http.NewRenderer()
	if err != nil {
		slog.Error("failed to load templates", "error", err)
		os.Exit(1)
	}
	sessions := http.NewSessionMiddleware(authService, cfg.Auth.CookieSecure, cfg.Auth.SessionTTL)

	handler := http.NewHandler(
		http.NewAuthHandler(authService, sessions, renderer),
		http.NewSurveyHandler(surveyService, responseService, renderer),
		http.NewResponseHandler(surveyService, responseService, renderer),
		http.NewHealthHandler(db),
		sessions,
		renderer,
		http.RouterOptions{
			RequestTimeout: cfg.Server.RequestTimeout,
			Workers:        cfg.Server.Workers,
		},
	)

	server := &stdhttp.Server{
		Addr:              cfg.Server.BindAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
	}

	go func() {
		slog.Info("listening", "addr", cfg.Server.BindAddress, "workers", cfg.Server.Workers)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, *repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.PostgresURL())
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, &repositories{
			surveys:   postgres.NewSurveyRepository(db),
			responses: postgres.NewResponseRepository(db),
			users:     postgres.NewUserRepository(db),
			sessions:  postgres.NewSessionRepository(db),
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.CreateSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, &repositories{
			surveys:   sqlite.NewSurveyRepository(db),
			responses: sqlite.NewResponseRepository(db),
			users:     sqlite.NewUserRepository(db),
			sessions:  sqlite.NewSessionRepository(db),
		}, nil
	}

	return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}
