package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"civiceye/internal/account"
	"civiceye/internal/audit"
	"civiceye/internal/complaint/cache"
	complainthandler "civiceye/internal/complaint/handler"
	complaintmetrics "civiceye/internal/complaint/metrics"
	complaintservice "civiceye/internal/complaint/service"
	complaintstore "civiceye/internal/complaint/store"
	jwttoken "civiceye/internal/jwt_token"
	"civiceye/internal/platform/config"
	"civiceye/internal/platform/database"
	"civiceye/internal/platform/health"
	"civiceye/internal/platform/httpserver"
	"civiceye/internal/platform/logger"
	platformredis "civiceye/internal/platform/redis"
	"civiceye/internal/pnr"
	pnrmetrics "civiceye/internal/pnr/metrics"
	"civiceye/internal/pnr/tracer"
	"civiceye/internal/seeder"
	httptransport "civiceye/internal/transport/http"
	"civiceye/migrations"
	"civiceye/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing civiceye",
		"addr", cfg.Addr,
		"postgres", cfg.Database.URL != "",
		"redis", cfg.Redis.URL != "",
		"kafka", cfg.Kafka.Brokers != "",
	)

	ctx := context.Background()
	healthHandler := health.New()

	// Persistence: PostgreSQL when configured, in-memory otherwise.
	var (
		accountStore   account.Store
		ledgerStore    pnr.Store
		complaintStore complaintstore.Store
	)
	pool, err := database.New(cfg.Database)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := applyMigrations(ctx, pool); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		accountStore = account.NewPostgres(pool.DB())
		ledgerStore = pnr.NewPostgres(pool.DB())
		complaintStore = complaintstore.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("postgres", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(checkCtx)
		})
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		accountStore = account.NewInMemoryStore()
		ledgerStore = pnr.NewInMemoryStore()
		complaintStore = complaintstore.NewInMemoryStore()
	}

	// Tracker cache: Redis when configured.
	trackerCache := cache.TrackerCache(cache.NopTrackerCache{})
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		trackerCache = cache.NewBreakerTrackerCache(
			cache.NewRedisTrackerCache(redisClient.Client),
			circuit.New("tracker_cache"),
			log,
		)
		healthHandler.RegisterCheck("redis", func() error {
			checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(checkCtx)
		})
	}

	// Lifecycle events: Kafka when configured.
	var auditPublisher audit.Publisher = audit.NopPublisher{}
	if cfg.Kafka.Brokers != "" {
		kafkaPublisher, err := audit.NewKafkaPublisher(ctx, audit.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, log)
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		auditPublisher = kafkaPublisher
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "civiceye", cfg.TokenTTL)

	accountService := account.NewService(accountStore, log)
	accountHandler := account.NewHandler(accountService, tokens, log)

	pnrService := pnr.NewService(ledgerStore, log,
		pnr.WithTracer(tracer.NewOTel()),
		pnr.WithMetrics(pnrmetrics.New()),
	)
	pnrHandler := pnr.NewHandler(pnrService, log)

	complaintService := complaintservice.NewService(complaintStore, log,
		complaintservice.WithMetrics(complaintmetrics.New()),
		complaintservice.WithTrackerCache(trackerCache, config.TrackerCacheTTL),
		complaintservice.WithAuditPublisher(auditPublisher),
	)
	complaintHandler := complainthandler.NewHandler(complaintService, log)

	if cfg.SeedDemoData {
		if err := seeder.New(accountStore, ledgerStore, log).Run(ctx); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Validator:  tokens,
		Accounts:   accountHandler,
		PNR:        pnrHandler,
		Complaints: complaintHandler,
		Health:     healthHandler,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// applyMigrations executes all embedded *.up.sql files in name order. Every
// statement is idempotent, so re-running on boot is safe.
func applyMigrations(ctx context.Context, pool *database.Pool) error {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := pool.DB().ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration %s: %w", file, err)
		}
	}
	return nil
}
