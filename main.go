package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focoshop/focoshop-be/internal/api"
	"github.com/focoshop/focoshop-be/internal/auth"
	"github.com/focoshop/focoshop-be/internal/cache"
	"github.com/focoshop/focoshop-be/internal/config"
	"github.com/focoshop/focoshop-be/internal/database"
	"github.com/focoshop/focoshop-be/internal/logger"
	"github.com/focoshop/focoshop-be/internal/media"
	"github.com/focoshop/focoshop-be/internal/metrics"
	"github.com/focoshop/focoshop-be/internal/monitoring"
	"github.com/focoshop/focoshop-be/internal/services"
	"github.com/focoshop/focoshop-be/internal/store"
	"github.com/focoshop/focoshop-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	ctx := context.Background()

	// Set up database
	if err := database.Migrate(cfg.Database); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)

	// Set up auth
	hasher, err := auth.NewHasher(cfg.JWT.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid password hashing configuration")
	}
	tokens := auth.NewTokenIssuer(&cfg.JWT)
	authenticator, err := auth.NewAuthenticator(userStore, hasher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize authenticator")
	}
	guard := auth.NewGuard(tokens, userStore)

	// Set up image storage
	images, err := media.New(ctx, cfg.Uploads)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}
	var uploadDir string
	if local, ok := images.(*media.LocalStore); ok {
		uploadDir = local.Dir()
	}

	// The category cache is optional; the service falls back to the database.
	var categoryCache services.CategoryCache
	if cfg.Redis.Addr != "" {
		c, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, category cache disabled")
		} else {
			defer c.Close()
			categoryCache = c
		}
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(userStore, hasher, images)
	categoryService := services.NewCategoryService(categoryStore, categoryCache, hub)

	m := metrics.New()

	// Set up and run the background stats updater
	statDir := uploadDir
	if statDir == "" {
		statDir = "."
	}
	statUpdater := monitoring.NewStatUpdater(statDir, 30*time.Second)
	go statUpdater.Run()

	// Set up the orphaned upload sweeper
	sweeper := monitoring.NewSweeper(images, userStore, monitoring.DefaultGracePeriod)
	if err := sweeper.Start(cfg.Uploads.SweepSchedule); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule upload sweeper")
	}

	// Set up router
	router := api.NewRouter(api.Deps{
		Config:        cfg,
		DB:            db,
		Users:         userService,
		Categories:    categoryService,
		Authenticator: authenticator,
		Tokens:        tokens,
		Guard:         guard,
		Hub:           hub,
		Metrics:       m,
		Stats:         statUpdater,
		UploadDir:     uploadDir,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()
	statUpdater.Stop()
	hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
