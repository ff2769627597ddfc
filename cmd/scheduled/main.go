// Command scheduled serves the appointment import and custom domain API
// and runs the domain verification workers.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/scheduled/internal/config"
	"github.com/dmitrymomot/scheduled/internal/httpapi"
	"github.com/dmitrymomot/scheduled/internal/repository"
	"github.com/dmitrymomot/scheduled/internal/repository/migrations"
	"github.com/dmitrymomot/scheduled/internal/tasks"
	"github.com/dmitrymomot/scheduled/internal/verification"
	"github.com/dmitrymomot/scheduled/pkg/cache"
	"github.com/dmitrymomot/scheduled/pkg/db"
	"github.com/dmitrymomot/scheduled/pkg/dnsverify"
	"github.com/dmitrymomot/scheduled/pkg/health"
	"github.com/dmitrymomot/scheduled/pkg/job"
	"github.com/dmitrymomot/scheduled/pkg/logger"
	"github.com/dmitrymomot/scheduled/pkg/mailer"
	"github.com/dmitrymomot/scheduled/pkg/mailer/resend"
	"github.com/dmitrymomot/scheduled/pkg/redis"
	"github.com/dmitrymomot/scheduled/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Log, httpapi.RequestIDExtractor())
	if err := run(cfg, log); err != nil {
		log.Error("service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// shutdownFunc matches the Shutdown helpers of pkg/db and pkg/redis.
type shutdownFunc func(context.Context) error

func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var hooks []shutdownFunc
	defer func() { shutdown(cfg, log, hooks) }()

	pool, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	hooks = append(hooks, db.Shutdown(pool))

	if err := db.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationsTable, logger.Component(log, "migrations")); err != nil {
		return err
	}
	if err := job.Migrate(ctx, pool); err != nil {
		return err
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}

	sessions, rh, err := importSessions(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rh != nil {
		hooks = append(hooks, rh.shutdown)
		checks["redis"] = rh.healthcheck
	}

	var archive httpapi.Archive
	if cfg.Storage.Enabled() {
		s3, err := storage.New(cfg.Storage)
		if err != nil {
			return err
		}
		archive = s3
	}

	verifier := dnsverify.New(
		dnsverify.WithNameserver(cfg.Domains.Nameserver),
		dnsverify.WithLogger(logger.Component(log, "dnsverify")),
	)

	var sender mailer.Sender = mailer.LogSender{Logger: logger.Component(log, "mailer")}
	if cfg.Resend.APIKey != "" {
		sender = resend.New(cfg.Resend)
	}
	mail := mailer.New(sender, mailer.NewRenderer(mailer.Templates()), cfg.Mailer)

	domains := repository.NewDomains(pool)
	verifySvc := verification.New(domains, verifier, mail, cfg.Domains.CNAMETarget, logger.Component(log, "verification"))

	enqueuer := &taskEnqueuer{maxAttempts: cfg.Domains.VerifyAttempts}
	jobLog := logger.Component(log, "jobs")
	manager, err := job.NewManager(pool,
		job.WithLogger(jobLog),
		job.WithMaxWorkers(cfg.Jobs.MaxWorkers),
		job.WithTask[tasks.VerifyDomainPayload](tasks.NewVerifyDomain(domains, verifySvc, jobLog)),
		job.WithScheduledTask(tasks.NewRecheckPending(domains, enqueuer,
			cfg.Domains.RecheckCron, cfg.Domains.RecheckBatch, cfg.Domains.RecheckUnique, jobLog)),
	)
	if err != nil {
		return err
	}
	enqueuer.manager = manager
	checks["jobs"] = job.Healthcheck(manager)

	server := httpapi.New(httpapi.Deps{
		Sessions:     sessions,
		Appointments: repository.NewAppointments(pool),
		Archive:      archive,
		Domains:      domains,
		Verifier:     verifySvc,
		Connectivity: verifier,
		Jobs:         enqueuer,
		Checks:       checks,
	}, httpapi.Options{
		CNAMETarget:     cfg.Domains.CNAMETarget,
		CORSOrigins:     cfg.Server.CORSOrigins,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		RequestTimeout:  cfg.Server.RequestTimeout,
		SessionTTL:      cfg.Imports.SessionTTL,
		FirstCheckDelay: cfg.Domains.FirstCheck,
		PreviewLimit:    cfg.Imports.PreviewLimit,
	}, logger.Component(log, "http"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	})
	g.Go(func() error {
		return manager.Run(gctx, cfg.Jobs.StopTimeout)
	})
	return g.Wait()
}

// shutdown runs hooks in reverse registration order.
func shutdown(cfg config.Config, log *slog.Logger, hooks []shutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("shutdown completed with errors", slog.Any("error", err))
		return
	}
	log.Info("shutdown completed")
}

type redisHooks struct {
	shutdown    shutdownFunc
	healthcheck health.CheckFunc
}

// importSessions keeps sessions in Redis when REDIS_URL is set, so any
// replica can commit an upload, and in process memory otherwise.
func importSessions(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Cache[httpapi.ImportSession], *redisHooks, error) {
	if cfg.Redis.URL == "" {
		log.Warn("REDIS_URL is not set, import sessions are kept in memory")
		return cache.NewMemory[httpapi.ImportSession](cfg.Imports.SessionTTL), nil, nil
	}

	client, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedis[httpapi.ImportSession](client, "imports", cfg.Imports.SessionTTL),
		&redisHooks{shutdown: redis.Shutdown(client), healthcheck: redis.Healthcheck(client)},
		nil
}

// taskEnqueuer is handed to tasks and handlers before the manager exists,
// and caps retries for every job it enqueues.
type taskEnqueuer struct {
	manager     *job.Manager
	maxAttempts int
}

func (e *taskEnqueuer) Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	opts = append([]job.EnqueueOption{job.MaxAttempts(e.maxAttempts)}, opts...)
	return e.manager.Enqueue(ctx, name, payload, opts...)
}
