package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OracleAgent/internal/service/ratelimit"
	"OracleAgent/pkg/config"
	xhttp "OracleAgent/pkg/http"
	pkgkafka "OracleAgent/pkg/kafka"
	applogger "OracleAgent/pkg/logger"
)

// BackgroundJob is a component with its own schedule, e.g. the fee refresher.
type BackgroundJob interface {
	Start(ctx context.Context) error
	Stop()
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	limiter    *ratelimit.Limiter
	jobs       []BackgroundJob
}

// New creates a new App instance with all dependencies. consumer and kh may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	limiter *ratelimit.Limiter,
	jobs ...BackgroundJob,
) *App {
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		consumer:   consumer,
		kh:         kh,
		limiter:    limiter,
		jobs:       jobs,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) start(ctx context.Context) error {
	for _, job := range a.jobs {
		if err := job.Start(ctx); err != nil {
			a.log.Error("background job start error", applogger.Error(err))
			return err
		}
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("oracle agent started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("storage", a.cfg.Storage.Backend),
		applogger.Bool("ai_enabled", a.cfg.AIEnabled()),
		applogger.Bool("kafka_enabled", a.cfg.Kafka.Enabled),
	)
	return nil
}

// sweepLimiter drops idle buckets so the per-IP map does not grow without bound.
func (a *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services. Storage, cache and publisher are closed by the DI cleanup.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	for _, job := range a.jobs {
		job.Stop()
	}

	a.log.Info("shutdown complete")
	return nil
}
