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

	"todo_backend/internal/config"
	"todo_backend/internal/logging"
	"todo_backend/internal/repository"
	"todo_backend/internal/server"
	"todo_backend/internal/service"
	"todo_backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return err
	}
	gin.SetMode(cfg.GinMode)
	if !cfg.DotEnvLoaded {
		log.Debug(ctx, "no .env file found, relying on environment variables")
	}

	// --- Storage ---
	var store repository.Transactor
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn(ctx, "using in-memory storage, data is lost on exit")
		store = repository.NewMemoryStore()
	default:
		dbPool, err := config.ConnectDB(ctx, cfg.DB, log)
		if err != nil {
			log.Error(ctx, "failed to connect to database", "error", err)
			return err
		}
		defer dbPool.Close()

		if err := config.Migrate(ctx, dbPool); err != nil {
			log.Error(ctx, "failed to migrate database", "error", err)
			return err
		}
		store = repository.NewPostgresStore(dbPool)
	}

	// --- Initialize Utilities ---
	jwtUtil, err := utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.JWTTTL)
	if err != nil {
		log.Error(ctx, "failed to create JWT util", "error", err)
		return err
	}

	// --- Initialize Services ---
	router := server.NewRouter(server.Deps{
		Auth:               service.NewAuthService(store, jwtUtil, log, cfg.InitialAdminUsername),
		Todos:              service.NewTodoService(store),
		Admin:              service.NewAdminService(store, log),
		Store:              store,
		Log:                log,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "port", cfg.ServerPort, "storage", cfg.Storage, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		log.Error(ctx, "listen failed", "error", err)
		return err
	case <-quit:
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server forced to shutdown", "error", err)
		return err
	}

	log.Info(ctx, "server exiting")
	return nil
}
