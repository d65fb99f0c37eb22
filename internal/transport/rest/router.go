package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/financial-analyst/api"
	"github.com/frahmantamala/financial-analyst/internal/analysis"
	"github.com/frahmantamala/financial-analyst/internal/auth"
	"github.com/frahmantamala/financial-analyst/internal/company"
	"github.com/frahmantamala/financial-analyst/internal/financial"
	"github.com/frahmantamala/financial-analyst/internal/transport/middleware"
	"github.com/frahmantamala/financial-analyst/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Health    *HealthHandler
	Auth      *auth.Handler
	Company   *company.Handler
	Financial *financial.Handler
	Analysis  *analysis.Handler
	Access    middleware.CompanyAccessChecker
}

type RouterOptions struct {
	AllowedOrigins string
	Logger         *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts RouterOptions) error {
	logger := opts.Logger

	validator, err := middleware.NewOpenAPIValidator(api.Spec, logger)
	if err != nil {
		return err
	}

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Spec)
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(validator.Middleware)

		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.GetCurrentUser)
			pr.Get("/companies", h.Company.GetCompanies)

			pr.Route("/companies/{companyID}", func(cr chi.Router) {
				cr.Use(middleware.RequireCompanyAccess(h.Access, "companyID", logger))
				cr.Get("/financials", h.Financial.GetFinancials)
				cr.Post("/questions", h.Analysis.AskQuestion)
			})
		})
	})

	return nil
}
