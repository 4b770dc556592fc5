package http

import (
	"net/http"

	"github.com/course-agent-api/internal/application/account"
	"github.com/course-agent-api/internal/application/schedule"
	"github.com/course-agent-api/internal/config"
	"github.com/course-agent-api/internal/transport/http/handler"
	appmiddleware "github.com/course-agent-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	accountSvc := account.NewService(account.ServiceDeps{
		UserRepo:         deps.UserRepo,
		VerificationRepo: deps.VerificationRepo,
		Mailer:           deps.Mailer,
	})
	scheduleSvc := schedule.NewService(schedule.ServiceDeps{
		EnrollmentRepo: deps.EnrollmentRepo,
		UserRepo:       deps.UserRepo,
		Mailer:         deps.Mailer,
		SMSSender:      deps.SMSSender,
	})

	healthH := handler.NewHealthHandler()
	accountH := handler.NewAccountHandler(accountSvc)
	courseH := handler.NewCourseHandler(scheduleSvc)

	sessionMw := appmiddleware.Session(cfg, deps.JWTProvider, deps.SessionRepo)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		// Every flow route runs with a resolved session.
		r.Group(func(r chi.Router) {
			r.Use(sessionMw)

			r.Post("/signup", accountH.Signup)
			r.Post("/login", accountH.Login)
			r.Post("/verify-otp", accountH.VerifyOTP)
			r.Post("/forgot-password", accountH.ForgotPassword)
			r.Post("/verify-reset-code", accountH.VerifyResetCode)
			r.Post("/new-password", accountH.NewPassword)

			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireAuth)

				r.Get("/courses", courseH.Catalog)
				r.Post("/courses/{id}/schedule", courseH.Enroll)
				r.Put("/courses/{id}/schedule", courseH.UpdateSchedule)
				r.Get("/my-courses", courseH.MyCourses)
				r.Get("/profile", courseH.Profile)
				r.Post("/logout", accountH.Logout)
			})
		})
	})

	return r
}
