package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vmxio.com/numlab/internal/auth"
	"vmxio.com/numlab/internal/tutor"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

func runServer(ctx context.Context) error {
	// 1) DB
	db, err := OpenDB(cfg.Database.Driver, cfg.Database.DSN, verbose)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	// 2) Migrate + seed (if empty)
	if err := prepareDB(db, cfg.Seed.ExercisesPath, logger); err != nil {
		return err
	}

	// 3) Tutor, only when a key is configured
	var completer tutor.Completer
	if cfg.Tutor.APIKey != "" {
		completer = tutor.NewResilient(tutor.NewOpenAIClient(tutor.OpenAIConfig{
			APIKey:  cfg.Tutor.APIKey,
			BaseURL: cfg.Tutor.BaseURL,
			Model:   cfg.Tutor.Model,
			Timeout: cfg.Tutor.Timeout,
		}), tutor.DefaultResilientConfig(logger))
	} else {
		logger.Warn("tutor disabled: no API key configured")
	}
	tutorSvc := tutor.NewService(completer, tutor.Options{
		MaxQuestionLen: cfg.Tutor.MaxQuestionLen,
		MaxHistory:     cfg.Tutor.MaxHistory,
		Logger:         logger,
	})

	app := NewApp(db, cfg, logger, auth.LogMailer{Logger: logger}, tutorSvc)
	defer app.Close()

	// 4) Router
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.Bool("secureCookies", cfg.Server.SecureCookies),
			zap.String("db", cfg.Database.Driver),
			zap.Strings("origins", cfg.Server.AllowedOrigins))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
