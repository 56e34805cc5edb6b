// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

// Command authd is the entry point for the Viewr authentication service.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire the auth domain and RPC dispatcher.
//  7. Start the AMQP consumer and the ops HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/api"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/auth"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/gateway"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/config"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/constants"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/kv"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/mail"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/migration"
	pgstore "github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/postgres"
	redisstore "github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/redis"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/platform/sec"
	"github.com/MohamedSbika/Viewr-Backend-sub000/internal/rbac"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Viewr] auth_service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("queue", cfg.AuthQueue),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	store := kv.NewRedisStore(rdb)
	hasher := sec.NewHasher(cfg.HashParaphrase)
	codec := sec.NewTokenCodec(cfg.SigningSecret, constants.AuthIssuer, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	var sender mail.Sender
	if cfg.IsDevelopment() {
		sender = mail.NewLogSender(log)
	} else {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	userRepository := auth.NewUserRepository(pool)
	roleRepository := rbac.NewRoleRepository(pool)
	featureRepository := rbac.NewFeatureRepository(pool)
	permissionRepository := rbac.NewPermissionRepository(pool)
	grantRepository := rbac.NewGrantRepository(pool)

	roleSource := auth.NewPrimaryRoleSource(roleRepository)
	aggregator := rbac.NewAggregator(roleRepository, grantRepository)
	sessions := auth.NewSessionRegistry(store, codec, roleSource, log)
	otpService := auth.NewOTPService(store, sender, log)
	resetFlow := auth.NewResetFlow(store, userRepository, hasher, sessions, sender, cfg.FrontendURL, log)

	authService := auth.NewService(
		userRepository,
		roleRepository,
		roleSource,
		aggregator,
		sessions,
		otpService,
		resetFlow,
		hasher,
		codec,
		log,
	)
	rbacService := rbac.NewService(roleRepository, featureRepository, permissionRepository, grantRepository, log)

	dispatcher := gateway.Mux{
		"auth": auth.NewDispatcher(authService),
		"rbac": rbac.NewDispatcher(rbacService),
	}

	// ── 7. Gateway Consumer ───────────────────────────────────────────────
	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	consumer := gateway.NewConsumer(cfg.AMQPURL, cfg.AuthQueue, dispatcher, log)
	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(runCtx)
	}()

	// ── 8. Ops HTTP Server ────────────────────────────────────────────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	server := api.NewServer(cfg, log, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	// Block until OS signal, consumer death, or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-consumerErr:
		log.Error("gateway consumer stopped", slog.Any("error", err))
	case err := <-serverErr:
		log.Error("ops server startup error", slog.Any("error", err))
	}

	// Stop the consumer, then drain in-flight HTTP requests.
	runCancel()

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("service stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
