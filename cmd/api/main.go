package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	_ "embed"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/launchpadhq/intake-platform/internal/api/router"
	appconfig "github.com/launchpadhq/intake-platform/internal/config"
	"github.com/launchpadhq/intake-platform/internal/conversation"
	"github.com/launchpadhq/intake-platform/internal/intake"
	"github.com/launchpadhq/intake-platform/internal/leads"
	"github.com/launchpadhq/intake-platform/internal/notify"
	"github.com/launchpadhq/intake-platform/internal/observability/metrics"
	"github.com/launchpadhq/intake-platform/internal/webchat"
	"github.com/launchpadhq/intake-platform/pkg/logging"
)

//go:embed widget.js
var widgetJS []byte

func main() {
	// Load .env in development; ignored when absent.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting intake-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Session store: Redis when configured, in-memory for local dev.
	var sessions intake.SessionStore
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		sessions = intake.NewRedisStore(client, cfg.SessionTTL)
		logger.Info("session store ready", "backend", "redis", "ttl", cfg.SessionTTL)
	} else {
		sessions = intake.NewMemoryStore()
		logger.Warn("REDIS_ADDR not set, sessions are in-memory and lost on restart")
	}

	// Lead storage and conversation archive: Postgres when configured.
	var leadsRepo leads.Repository
	var archive *conversation.Archive
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		leadsRepo = leads.NewPostgresRepository(pool)

		archiveDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open archive db", "error", err)
			os.Exit(1)
		}
		defer func() { _ = archiveDB.Close() }()
		archive = conversation.NewArchive(archiveDB)
		logger.Info("lead storage ready", "backend", "postgres")
	} else {
		leadsRepo = leads.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, leads are in-memory and lost on restart")
	}

	// Notifications
	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	var notifier leads.Notifier
	if emailSender != nil && cfg.OperatorEmail != "" {
		notifier = notify.NewService(emailSender, cfg.OperatorEmail, logger)
	}

	// Metrics
	intakeMetrics := metrics.NewIntakeMetrics(prometheus.DefaultRegisterer)

	// Core services
	matcher := intake.NewMatcher(logger)
	engine := intake.NewEngine(matcher, cfg.MaxFieldRetries, logger)
	leadsService := leads.NewService(leadsRepo, notifier, logger)
	leadsHandler := leads.NewHandler(leadsRepo, leadsService, logger)
	webchatHandler := webchat.NewHandler(engine, sessions, leadsService, archive, intakeMetrics, widgetJS, logger)

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		WebchatHandler:     webchatHandler,
		LeadsHandler:       leadsHandler,
		MetricsHandler:     promhttp.Handler(),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		DashboardSubdomain: cfg.DashboardSubdomain,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRateLimit:      2,
		ChatRateBurst:      10,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
