package server

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"StockLens/internal/domain/repository"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
)

const janitorInterval = time.Minute

type janitor struct {
	name string
	fn   func() int
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	publisher  repository.Publisher
	janitors   []janitor
}

// New creates a new App serving HTTP only; see SetConsumer.
func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, httpServer: srv}
}

// SetConsumer attaches the forecast event pipeline. pub is closed on shutdown
// after the consumer has drained.
func (a *App) SetConsumer(c *pkgkafka.Consumer, kh pkgkafka.MessageHandler, pub repository.Publisher) {
	a.consumer = c
	a.kh = kh
	a.publisher = pub
}

// AddJanitor runs fn every minute; fn returns how many entries it dropped.
func (a *App) AddJanitor(name string, fn func() int) {
	a.janitors = append(a.janitors, janitor{name: name, fn: fn})
}

// Run starts the application and blocks until interrupted or the HTTP
// listener fails.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext is Run with an explicit lifetime.
func (a *App) RunContext(ctx context.Context) error {
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	jctx, cancelJanitors := context.WithCancel(ctx)
	defer cancelJanitors()
	go a.runJanitors(jctx)

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case runErr = <-a.httpServer.Err():
		a.log.Error("http server failed", applogger.Error(runErr))
	}
	cancelJanitors()

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) runJanitors(ctx context.Context) {
	if len(a.janitors) == 0 {
		return
	}
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, j := range a.janitors {
				if n := j.fn(); n > 0 {
					a.log.Debug("janitor evicted entries", applogger.String("janitor", j.name), applogger.Int("count", n))
				}
			}
		}
	}
}

// shutdown gracefully stops all services: HTTP first, then the consumer so
// in-flight events can still publish, then the publisher.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}
