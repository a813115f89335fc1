package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	consenthandler "refchain/internal/consent/handler"
	consentmetrics "refchain/internal/consent/metrics"
	consentservice "refchain/internal/consent/service"
	consentstore "refchain/internal/consent/store"
	"refchain/internal/notify"
	notifymetrics "refchain/internal/notify/metrics"
	"refchain/internal/platform/config"
	"refchain/internal/platform/database"
	"refchain/internal/platform/httpserver"
	"refchain/internal/platform/logger"
	"refchain/internal/platform/tracer"
	referencehandler "refchain/internal/reference/handler"
	referencemetrics "refchain/internal/reference/metrics"
	referenceservice "refchain/internal/reference/service"
	referencestore "refchain/internal/reference/store"
	"refchain/internal/seeder"
	tenantstore "refchain/internal/tenant/store"
	httptransport "refchain/internal/transport/http"
	"refchain/internal/verification"
	verificationhandler "refchain/internal/verification/handler"
	verificationmetrics "refchain/internal/verification/metrics"
	"refchain/migrations"
)

// referenceStore is the union of the lifecycle manager's and the scoring
// engine's views of the reference store. Both concrete stores implement it.
type referenceStore interface {
	referenceservice.Store
	verification.References
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	log.Info("initializing refchain",
		"addr", cfg.Addr,
		"postgres", cfg.DatabaseURL != "",
	)

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	var (
		consents   consentservice.Store
		references referenceStore
		tenants    verification.Tenants
	)
	if pool != nil {
		if cfg.MigrateOnStart {
			if err := pool.Migrate(context.Background(), migrations.FS); err != nil {
				log.Error("migrations failed", "error", err)
				os.Exit(1)
			}
		}
		consents = consentstore.NewPostgres(pool.DB())
		references = referencestore.NewPostgres(pool.DB())
		tenants = tenantstore.NewPostgres(pool.DB())
		defer pool.Close()
	} else {
		log.Warn("no DATABASE_URL set, using in-memory stores")
		consents = consentstore.New()
		references = referencestore.New()
		memTenants := tenantstore.New()
		if cfg.SeedDemoData {
			if err := seeder.New(memTenants, log).SeedAll(context.Background()); err != nil {
				log.Error("demo seeding failed", "error", err)
				os.Exit(1)
			}
		}
		tenants = memTenants
	}

	trc := tracer.Tracer(tracer.NewNoop())
	if os.Getenv("OTEL_ENABLED") == "true" {
		trc = tracer.NewOTel()
	}

	notifyMetrics := notifymetrics.New()
	var notifier notify.Notifier = notify.NewLogNotifier(log, notifyMetrics)
	if cfg.NotifyGatewayURL != "" {
		notifier = notify.NewHTTPNotifier(cfg.NotifyGatewayURL, cfg.NotifyGatewayKey, log, notifyMetrics)
	}

	consentSvc := consentservice.NewService(consents, tenants, log,
		consentservice.WithMetrics(consentmetrics.New()),
	)
	referenceSvc := referenceservice.NewService(references, tenants, notifier, log,
		referenceservice.WithMetrics(referencemetrics.New()),
		referenceservice.WithTracer(trc),
		referenceservice.WithReferenceTTL(cfg.ReferenceTTL),
		referenceservice.WithResendCooldown(cfg.ResendCooldown),
		referenceservice.WithMaxSendAttempts(cfg.MaxSendAttempts),
	)
	verificationSvc := verification.NewService(references, tenants, notifier, log,
		verification.WithMetrics(verificationmetrics.New()),
		verification.WithTracer(trc),
		verification.WithVerifiedThreshold(cfg.VerifiedThreshold),
		verification.WithProgressNotifyDelta(cfg.ProgressNotifyDelta),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Consent:      consenthandler.New(consentSvc, log),
		Reference:    referencehandler.New(referenceSvc, log),
		Verification: verificationhandler.New(verificationSvc, log),
	}, log, cfg.JWTSigningKey)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
