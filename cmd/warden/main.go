package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/warden/pkg/audit"
	"github.com/platinummonkey/warden/pkg/config"
	"github.com/platinummonkey/warden/pkg/invites"
	"github.com/platinummonkey/warden/pkg/middleware"
	"github.com/platinummonkey/warden/pkg/observability"
	"github.com/platinummonkey/warden/pkg/roles"
	"github.com/platinummonkey/warden/pkg/storage/postgres"
	"github.com/platinummonkey/warden/pkg/tenants"
	"github.com/platinummonkey/warden/pkg/users"
)

var configPath = flag.String("config", getEnv("WARDEN_CONFIG", ""), "Path to YAML config file (optional)")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger is not configured yet; fail on stderr.
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)

	connCfg := postgres.DefaultConnectionConfig(cfg.Database.URL)
	connCfg.MaxConns = cfg.Database.MaxConns
	connCfg.MinConns = cfg.Database.MinConns
	db, err := postgres.Connect(connCfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(context.Background(), db); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	health := observability.NewHealthChecker(db)
	auditLogger := audit.NewLogrusLogger(logger)

	roleStore := roles.NewStore(db)
	userStore := users.NewStore(db)
	tenantStore := tenants.NewStore(db)
	inviteStore := invites.NewStore(db)

	roleService := roles.NewService(roleStore)
	userService := users.NewService(userStore, roleStore)
	tenantService := tenants.NewService(tenantStore)
	inviteService := invites.NewService(inviteStore, roleStore, nil)

	gate := middleware.NewGatekeeper(metrics).RequireAuthority

	router := mux.NewRouter()
	router.HandleFunc("/healthz", health.Liveness).Methods("GET")
	router.HandleFunc("/readyz", health.Readiness).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler(registry)).Methods("GET")

	api := router.PathPrefix("/").Subrouter()
	api.Use(
		middleware.IdentityMiddleware(userStore),
		middleware.TenantMiddleware,
	)
	tenants.NewHandlers(tenantService, auditLogger).RegisterRoutes(api, gate)
	roles.NewHandlers(roleService, auditLogger, metrics).RegisterRoutes(api, gate)
	users.NewHandlers(userService, auditLogger, metrics).RegisterRoutes(api, gate)
	invites.NewHandlers(inviteService, auditLogger, metrics).RegisterRoutes(api, gate)

	handler := middleware.Chain(
		middleware.RequestIDMiddleware,
		middleware.LoggingMiddleware(logger),
		middleware.RecoveryMiddleware(logger),
		observability.HTTPMetricsMiddleware(metrics),
	)(router)

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			metrics.DBConnectionsActive.Set(float64(stats.InUse))
			metrics.DBConnectionsIdle.Set(float64(stats.Idle))
		}
	}()

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Invites.SweepSchedule, func() {
		swept, err := inviteService.CleanupExpired(context.Background())
		if err != nil {
			logger.WithError(err).Error("invite sweep failed")
			return
		}
		metrics.InvitesSweptTotal.Add(float64(swept))
		if swept > 0 {
			logger.WithField("swept", swept).Info("removed expired invite tokens")
		}
	}); err != nil {
		logger.WithError(err).Fatal("failed to schedule invite sweep")
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("addr", server.Addr).Info("warden listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

// getEnv returns the environment value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
