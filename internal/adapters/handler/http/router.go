package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	RequestTimeout time.Duration
	// Workers caps concurrent requests; extra ones wait in a backlog. 0 disables the cap.
	Workers int
}

func NewHandler(
	authHandler *AuthHandler,
	surveyHandler *SurveyHandler,
	responseHandler *ResponseHandler,
	healthHandler *HealthHandler,
	sessions *SessionMiddleware,
	renderer *Renderer,
	opts RouterOptions,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if opts.Workers > 0 {
		r.Use(middleware.ThrottleBacklog(opts.Workers, opts.Workers*4, opts.RequestTimeout))
	}

	r.Get("/healthz", healthHandler.Health)

	r.Route("/s/{id}", func(r chi.Router) {
		r.Get("/", responseHandler.Show)
		r.Post("/", responseHandler.Submit)
	})

	r.Group(func(r chi.Router) {
		r.Use(sessions.LoadUser)

		r.Get("/", authHandler.Home)
		r.Get("/register", authHandler.RegisterForm)
		r.Post("/register", authHandler.Register)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
		r.Get("/logout", authHandler.Logout)
		r.Get("/help", renderer.Static("help"))
		r.Get("/contact", renderer.Static("contact"))

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Get("/dashboard", surveyHandler.Dashboard)
			r.Get("/survey/create", surveyHandler.CreateForm)
			r.Post("/survey/create", surveyHandler.Create)
			r.Route("/survey/{id}", func(r chi.Router) {
				r.Get("/toggle", surveyHandler.Toggle)
				r.Post("/delete", surveyHandler.Delete)
				r.Get("/results", surveyHandler.Results)
			})
		})
	})

	return r
}
