package router

import (
	"net/http"

	"stockcount-api/internal/handler"
	"stockcount-api/internal/middleware"
	"stockcount-api/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	StockHandler   *handler.StockHandler
	AdminHandler   *handler.AdminHandler
	AuthHandler    *handler.AuthHandler
	AuthMiddleware func(http.Handler) http.Handler
	AllowedOrigins []string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	// Browsers reject credentialed responses for a wildcard origin.
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
		}
	}

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Token"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCredentials,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}
	if cfg.AuthHandler != nil {
		r.Post("/api/v1/auth/login", cfg.AuthHandler.Login)
	}

	// AUTHENTICATED routes
	r.Group(func(r chi.Router) {
		if cfg.AuthMiddleware != nil {
			r.Use(cfg.AuthMiddleware)
		}

		if cfg.AuthHandler != nil {
			r.Post("/api/v1/auth/logout", cfg.AuthHandler.Logout)
			r.Get("/api/v1/auth/me", cfg.AuthHandler.Me)
		}

		// Counting routes, staff and admin
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleStaff, model.RoleAdmin))

			if cfg.StockHandler != nil {
				r.Get("/get_product/{barcode}", cfg.StockHandler.GetProduct)
				r.Post("/submit_stock", cfg.StockHandler.SubmitStock)
			}
			if cfg.AdminHandler != nil {
				r.Get("/drive_status", cfg.AdminHandler.DriveStatus)
			}
		})

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/api/v1/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleAdmin))
				r.Get("/stats", cfg.AdminHandler.GetStats)
			})
		}
	})

	return r
}
