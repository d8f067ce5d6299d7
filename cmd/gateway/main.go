package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AniiitaCode/email-srv/internal/api"
	"github.com/AniiitaCode/email-srv/internal/config"
	"github.com/AniiitaCode/email-srv/internal/db"
	"github.com/AniiitaCode/email-srv/internal/mailer"
	"github.com/AniiitaCode/email-srv/internal/metrics"
	"github.com/AniiitaCode/email-srv/internal/observ"
	"github.com/AniiitaCode/email-srv/internal/redis"
	"github.com/AniiitaCode/email-srv/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting email-srv gateway",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
		zap.String("mail_provider", cfg.MailProvider),
	)

	ctx := context.Background()
	database, err := db.New(ctx, db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	repo := db.NewRepository(database, logger)

	// Redis backs the preference read cache; the service runs without it.
	var prefCache *redis.PreferenceCache
	redisClient, err := redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, preference cache disabled",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
	} else {
		prefCache = redis.NewPreferenceCache(redisClient, logger)
		defer redisClient.Close()
	}

	sender, err := newSender(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}

	svc := service.New(repo, repo, sender, prefCache, logger)
	handler := api.NewHandler(logger, svc)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration_ms", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	})

	r.Route("/api/v1/emails", func(r chi.Router) {
		r.Post("/", handler.SendEmail)
		r.Post("/preferences", handler.UpsertPreference)
		r.Get("/preferences", handler.GetPreference)
		r.Put("/preferences", handler.ChangePreference)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}

func newSender(ctx context.Context, cfg *config.Config, logger *zap.Logger) (mailer.Sender, error) {
	switch cfg.MailProvider {
	case "ses":
		return mailer.NewSESSender(ctx, mailer.SESConfig{
			Region: cfg.AWSRegion,
			From:   cfg.SESFromEmail,
		}, logger)
	case "log":
		return mailer.NewLogSender(logger), nil
	default:
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger), nil
	}
}
