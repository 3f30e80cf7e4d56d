// Command server runs the credential intake service: it accepts form
// submissions over HTTP, drives each one through the issuance workflow, and
// records the terminal outcome. Wiring lives here; business logic lives in
// the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"keydesk/internal/audit"
	"keydesk/internal/credname"
	"keydesk/internal/expiry"
	"keydesk/internal/identity"
	intakehandler "keydesk/internal/intake/handler"
	"keydesk/internal/issuance"
	jwttoken "keydesk/internal/jwt_token"
	"keydesk/internal/notify"
	"keydesk/internal/outcome"
	"keydesk/internal/outcome/store/rows"
	"keydesk/internal/platform/config"
	"keydesk/internal/platform/httpserver"
	"keydesk/internal/platform/logger"
	"keydesk/internal/platform/metrics"
	"keydesk/internal/platform/middleware"
	platformredis "keydesk/internal/platform/redis"
	"keydesk/internal/workflow"
	workflowmetrics "keydesk/internal/workflow/metrics"
)

const auditInboxSize = 256

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Settings come from Redis when a shared store is configured, else from
	// the environment. Configuration is validated before any side effect.
	settings, closeSettings, err := newSettings(ctx)
	if err != nil {
		return err
	}
	defer closeSettings()

	cfg, err := config.Load(ctx, settings)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.LogLevel)

	store, closeStore, err := newRowStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var mailer notify.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.MailEndpoint, cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailName)
	} else {
		log.Warn("no mail transport configured, notifications are recorded in memory only")
		mailer = notify.NewMemoryMailer()
	}

	group, ctx := errgroup.WithContext(ctx)

	sink, closeSink := newAuditSink(ctx, cfg, log, group)
	defer closeSink()

	service := workflow.New(
		identity.New(store, log),
		expiry.New(log),
		credname.New(),
		issuance.NewClient(cfg.IssuanceEndpoint, cfg.Region, cfg.APIKey, log),
		notify.NewNotifier(mailer, cfg.AdminEmail, log),
		outcome.NewRecorder(store, log),
		store,
		cfg.AccessPolicyID,
		cfg.DefaultExpiryDays,
		workflow.WithLogger(log),
		workflow.WithAuditSink(sink),
		workflow.WithMetrics(workflowmetrics.New()),
	)

	srv := httpserver.New(cfg.Addr, newRouter(cfg, log, service))

	group.Go(func() error {
		log.Info("starting keydesk", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("keydesk stopped")
	return nil
}

func newRouter(cfg config.Config, log *slog.Logger, service *workflow.Service) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestMeta)
	router.Use(metrics.New().Instrument)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		if cfg.IntakeSigningKey != "" {
			r.Use(middleware.RequireIntakeAuth(jwttoken.NewIntakeTokenService(cfg.IntakeSigningKey, "keydesk"), log))
		} else {
			log.Warn("intake endpoint is unauthenticated, set INTAKE_SIGNING_KEY to require bearer tokens")
		}
		intakehandler.New(service, log).Register(r)
	})

	return router
}

func newSettings(ctx context.Context) (config.Settings, func(), error) {
	url := os.Getenv(config.KeyRedisURL)
	if url == "" {
		return config.EnvSettings{}, func() {}, nil
	}
	client, err := platformredis.New(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect settings store: %w", err)
	}
	if err := client.Health(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("settings store unavailable: %w", err)
	}
	return config.NewRedisSettings(client.Client, "keydesk:settings:"), func() { _ = client.Close() }, nil
}

func newRowStore(ctx context.Context, cfg config.Config) (outcome.RowStore, func(), error) {
	if cfg.DatabaseURL == "" {
		return rows.NewMemory(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open row store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("row store unavailable: %w", err)
	}
	store := rows.NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("prepare row store schema: %w", err)
	}
	return store, func() { _ = db.Close() }, nil
}

// newAuditSink returns the sink the workflow emits to. With Kafka
// configured, events flow through a bounded channel into a background
// worker so a slow broker cannot stall a submission.
func newAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger, group *errgroup.Group) (workflow.AuditSink, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return audit.NewMemorySink(), func() {}
	}

	kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers)
	if err != nil {
		log.Error("audit kafka sink unavailable, falling back to memory", "error", err)
		return audit.NewMemorySink(), func() {}
	}

	inbox := make(chan audit.Event, auditInboxSize)
	worker := audit.NewWorker(kafkaSink, inbox, log)
	group.Go(func() error {
		err := worker.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return audit.NewChannelSink(inbox), kafkaSink.Close
}
