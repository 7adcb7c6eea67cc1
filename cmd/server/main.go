package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-redactor/internal/config"
	"resume-redactor/internal/handler"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Wiring
	container, err := config.NewContainer(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := container.Close(); err != nil {
			container.Logger.Error("Failed to close clients", err)
		}
	}()

	cfg := container.Config
	if err := os.MkdirAll(cfg.GetUploadPath(), 0o700); err != nil {
		container.Logger.Error("Failed to create upload directory", err, "path", cfg.GetUploadPath())
		return
	}

	// Handlers
	resumeHandler := handler.NewResumeHandler(
		container.ResumeService,
		container.Logger,
		cfg.GetUploadPath(),
		cfg.GetMaxFileSize(),
	)

	authMiddleware := handler.NewAuthMiddleware(
		container.TokenValidator,
		container.Logger,
	)

	// Router
	router := handler.NewRouter(resumeHandler, authMiddleware.Middleware)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server
	serverErr := make(chan error, 1)
	go func() {
		container.Logger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	select {
	case err := <-serverErr:
		container.Logger.Error("Server failed to start", err)
		return
	case <-ctx.Done():
	}

	container.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		container.Logger.Error("Graceful shutdown failed", err)
		_ = server.Close()
	}

	container.Logger.Info("Server exited")
}
