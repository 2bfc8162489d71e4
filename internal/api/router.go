package api

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/focoshop/focoshop-be/internal/api/handlers"
	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/config"
	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/logger"
	"github.com/focoshop/focoshop-be/internal/metrics"
	"github.com/focoshop/focoshop-be/internal/models"
	"github.com/focoshop/focoshop-be/internal/monitoring"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/focoshop/focoshop-be/internal/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps bundles what the router wires into handlers.
type Deps struct {
	Config        *config.Config
	DB            *sql.DB
	Users         services.UserServiceProvider
	Categories    services.CategoryServiceProvider
	Authenticator handlers.Authenticator
	Tokens        *auth.TokenIssuer
	Guard         *auth.Guard
	Hub           *websocket.Hub
	Metrics       *metrics.Metrics
	Stats         *monitoring.StatUpdater
	// UploadDir is served under /uploads/ when images are stored locally.
	UploadDir string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(d.Users, d.Authenticator, d.Tokens, d.Metrics, d.Config.Uploads.MaxUploadBytes())
	categoryHandler := handlers.NewCategoryHandler(d.Categories)
	var stats handlers.HostStatsSource
	if d.Stats != nil {
		stats = d.Stats
	}
	healthHandler := handlers.NewHealthHandler(d.DB, stats)

	r.Get("/", handlers.Root(fmt.Sprintf("http://localhost:%d", d.Config.ServerPort)))
	r.Get("/health", healthHandler.Get)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}
	if d.Hub != nil {
		r.Get("/ws/categorias", handlers.NewWebSocketHandler(d.Hub, d.Config.CORSAllowedOrigins).Serve)
	}
	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	// Everything below runs on one database session per request.
	r.Group(func(r chi.Router) {
		r.Use(database.Session(d.DB))

		r.Post("/token", userHandler.Token)

		r.Route("/usuarios", func(r chi.Router) {
			r.Post("/token", userHandler.Token)
			r.Post("/register", userHandler.Register)

			r.Group(func(r chi.Router) {
				r.Use(d.Guard.Handler)

				r.Get("/me", userHandler.GetMe)
				r.With(auth.RequireRole(models.RoleAdmin)).Get("/", userHandler.List)
				r.Get("/email/{email}", userHandler.GetByEmail)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Put("/", userHandler.Update)
					r.Delete("/", userHandler.Delete)
					r.Put("/password", userHandler.ChangePassword)
					r.With(auth.RequireRole(models.RoleAdmin)).Put("/rol", userHandler.UpdateRole)
					r.Post("/foto", userHandler.UploadImage)
				})
			})
		})

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", categoryHandler.GetAll)
			r.Get("/{id}", categoryHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(d.Guard.Handler)
				r.Use(auth.RequireRole(models.RoleAdmin))
				r.Post("/", categoryHandler.Create)
				r.Put("/{id}", categoryHandler.Update)
				r.Delete("/{id}", categoryHandler.Delete)
			})
		})
	})

	return r
}
