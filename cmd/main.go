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

	"github.com/sirupsen/logrus"

	"studentms/internal/config"
	"studentms/internal/database"
	"studentms/internal/grid"
	"studentms/internal/handler"
	"studentms/internal/logging"
	"studentms/internal/service"
	"studentms/internal/tui"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("exiting")
		os.Exit(1)
	}
}

// run returns instead of exiting so the deferred log file close always runs.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logFile, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer logFile.Close()

	provider, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open the database: %w", err)
	}
	studentService := service.NewStudentService(provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AppMode == config.ModeHTTP {
		return serveHTTP(ctx, cfg, studentService)
	}
	return tui.Run(ctx, grid.New(studentService), studentService)
}

func serveHTTP(ctx context.Context, cfg *config.Config, studentService *service.StudentService) error {
	importService := service.NewImportService(studentService)

	// Canceled on shutdown so running imports stop with the server.
	importCtx, stopImports := context.WithCancel(ctx)
	defer stopImports()
	uploads := handler.NewUploadHandler(importCtx, importService, cfg.UploadDir)

	router := handler.NewRouter(
		handler.NewStudentHandler(studentService),
		uploads,
		handler.NewProgressHandler(importService),
		cfg.CORSOrigin,
	)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("server running")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logrus.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)

	stopImports()
	uploads.Wait()
	return err
}
