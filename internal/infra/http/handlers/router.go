package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/reverio/leadgen/internal/infra/http/middleware"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Leads    *LeadHandler
	Admin    *AdminHandler
	Health   *HealthHandler
	Sessions middleware.SessionParser
	Limiter  *RateLimiter
	Origins  []string
	Logger   *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(10, 5)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.With(limiter.Middleware).Post("/register", cfg.Auth.HandleRegister)
		r.With(limiter.Middleware).Post("/login", cfg.Auth.HandleLogin)
		r.Post("/logout", cfg.Auth.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions))
			r.Get("/me", cfg.Auth.HandleMe)
			r.Post("/generate-leads", cfg.Leads.HandleGenerate)
			r.Get("/my-leads", cfg.Leads.HandleMyLeads)
			r.Get("/lead/{id}", cfg.Leads.HandleGetLead)
			r.Post("/update-lead-status", cfg.Leads.HandleUpdateStatus)
			r.Get("/lead-stats", cfg.Leads.HandleStats)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(limiter.Middleware).Post("/login", cfg.Auth.HandleAdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Sessions))
			r.Use(middleware.RequireAdmin)
			r.Post("/add-credits", cfg.Admin.HandleAddCredits)
			r.Get("/get-user-id", cfg.Admin.HandleGetUserID)
			r.Get("/check-leads", cfg.Admin.HandleCheckLeads)
			r.Post("/load-excel", cfg.Admin.HandleLoadExcel)
		})
	})

	return r
}
