// Copyright 2026 The Waitline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/waitline/waitline/internal/audit"
	"github.com/waitline/waitline/internal/auth"
	"github.com/waitline/waitline/internal/config"
	"github.com/waitline/waitline/internal/customer"
	"github.com/waitline/waitline/internal/notify"
	"github.com/waitline/waitline/internal/observability/logger"
	"github.com/waitline/waitline/internal/observability/metrics"
	"github.com/waitline/waitline/internal/observability/tracing"
	"github.com/waitline/waitline/internal/queue"
	"github.com/waitline/waitline/internal/staff"
	"github.com/waitline/waitline/internal/store/postgres"
	"github.com/waitline/waitline/internal/tenant"
	transportHTTP "github.com/waitline/waitline/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting waitline queue engine")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter := metrics.New(metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	tenantRepo := postgres.NewTenantRepository(db)
	queueRepo := postgres.NewQueueRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	staffRepo := postgres.NewStaffRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := staff.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	tokenManager := auth.NewTokenManager(
		[]byte(cfg.Security.TokenSecret),
		cfg.Security.TokenIssuer,
		cfg.Security.TokenLifetime,
	)
	engineMetrics, err := queue.NewMetrics(meter.GetMeter())
	if err != nil {
		slog.Error("failed to create engine metrics", logger.Error(err))
	}

	// Initialize services
	customerService := customer.NewService(customerRepo)
	engine := queue.NewService(
		queueRepo,
		ticketRepo,
		customerService,
		notify.NewSlogNotifier(),
		auditLogger,
		engineMetrics,
		queue.Config{
			EnforceEntryCap:  cfg.Engine.EnforceEntryCap,
			AllocateAttempts: cfg.Engine.AllocateAttempts,
			BackoffStep:      cfg.Engine.AllocateBackoff,
			SampleSize:       cfg.Engine.EstimatorSampleSize,
			DefaultEstimate:  cfg.Engine.DefaultEstimateMinutes,
		},
	)
	tenantService := tenant.NewService(tenantRepo, queueRepo, auditLogger)
	staffService := staff.NewService(staffRepo, passwordHasher, tokenManager, auditLogger)

	// Rate limiter for the public customer endpoints
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler and router
	handler := transportHTTP.NewHandler(
		engine,
		tenantService,
		customerService,
		staffService,
		tokenManager,
	)
	router := transportHTTP.NewRouter(handler, rateLimiter, cfg.Server.WriteTimeout)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
