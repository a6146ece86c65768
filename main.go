package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/isdelr/todo-manager-be/internal/api"
	"github.com/isdelr/todo-manager-be/internal/auth"
	"github.com/isdelr/todo-manager-be/internal/config"
	"github.com/isdelr/todo-manager-be/internal/database"
	"github.com/isdelr/todo-manager-be/internal/logger"
	"github.com/isdelr/todo-manager-be/internal/maintenance"
	"github.com/isdelr/todo-manager-be/internal/services"
)

func main() {
	logger.Init()

	// Load configuration. A missing JWT secret fails here, at startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	if err := database.Seed(db, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed database")
	}

	// Set up services
	tokenService := auth.NewTokenService(cfg)
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(db, userService, tokenService, auditService)
	todoService := services.NewTodoService(db, auditService)

	// Set up and run the background audit log pruner
	pruner := maintenance.NewPruner(auditService, cfg.AuditRetentionDays)
	pruner.Run()

	// Set up router
	router := api.NewRouter(tokenService, authService, userService, todoService, auditService, cfg.CORSOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
