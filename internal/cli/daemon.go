package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"sleepat/internal/api"
	"sleepat/internal/bus"
	"sleepat/internal/config"
	"sleepat/internal/devicelock"
	"sleepat/internal/expiry"
	"sleepat/internal/host"
	"sleepat/internal/i18n"
	"sleepat/internal/media"
	"sleepat/internal/metrics"
	"sleepat/internal/process"
	"sleepat/internal/status"
	"sleepat/internal/store"
)

const (
	commandTimeout = 10 * time.Second
	// notices refresh every tick, so a hung notify daemon must give up quickly
	notifyTimeout = 2 * time.Second
)

// daemon owns every long-lived component of a running timer host.
type daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	repo     *store.Repository
	catalog  *i18n.Catalog
	board    *status.Board
	lock     *devicelock.Manager
	registry *prometheus.Registry
	service  *host.Service
	bus      *bus.Bus
}

func newDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon, error) {
	repo, err := store.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	catalog, err := i18n.Load()
	if err != nil {
		repo.Close()
		return nil, err
	}

	d := &daemon{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		catalog:  catalog,
		board:    status.NewBoard(),
		registry: prometheus.NewRegistry(),
	}
	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewCollector(d.registry)

	runner := process.NewExec(commandTimeout)
	d.lock = devicelock.NewManager(repo, runner, cfg.LockCommand, logger)
	effects := expiry.New(
		media.NewPauser(runner, cfg.MediaCommand, logger),
		d.lock,
		cfg.LockOnExpiry,
		rec,
		logger,
	)

	var display status.Display = d.board
	if cfg.Notify.Enabled {
		desktop := status.NewDesktop(process.NewExec(notifyTimeout), cfg.Notify.Command, logger)
		if desktop.Available() {
			display = status.Multi{d.board, desktop}
		} else {
			logger.Warn("desktop notifications disabled, command not found", "command", cfg.Notify.Command)
		}
	}

	var publisher host.StatePublisher
	if cfg.Redis.Addr != "" {
		d.bus = bus.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			bus.WithPrefix(cfg.Redis.Prefix),
			bus.WithLogger(logger),
		)
		if err := d.bus.Ping(ctx); err != nil {
			d.bus.Close()
			repo.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		publisher = d.bus
	}

	d.service, err = host.New(ctx, host.Options{
		Store:          repo,
		Catalog:        catalog,
		Display:        display,
		Effects:        effects,
		Metrics:        rec,
		Publisher:      publisher,
		Lock:           d.lock,
		Logger:         logger,
		TickInterval:   cfg.TickInterval,
		DefaultMinutes: cfg.DefaultMinutes,
		ExtendSeconds:  cfg.ExtendSeconds,
		Language:       cfg.Language,
	})
	if err != nil {
		d.close(ctx)
		return nil, err
	}
	return d, nil
}

func (d *daemon) handler() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Timer:       d.service,
		Board:       d.board,
		Lock:        d.lock,
		History:     d.repo,
		Metrics:     metrics.Handler(d.registry),
		RateLimiter: api.NewRateLimiter(d.cfg.RateLimit.PerSecond, d.cfg.RateLimit.Burst, d.logger),
		Logger:      d.logger,
	})
}

// run drives the service loop, the bus listener and, when l is not nil, the
// HTTP server until ctx is done or one of them fails.
func (d *daemon) run(ctx context.Context, l net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.service.Run(ctx)
	})
	if d.bus != nil {
		g.Go(func() error {
			return d.bus.Listen(ctx, d.service)
		})
	}
	if l != nil {
		g.Go(func() error {
			return api.Serve(ctx, l, d.handler(), d.logger)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *daemon) close(ctx context.Context) {
	if d.service != nil {
		if err := d.service.Close(ctx); err != nil {
			d.logger.Warn("failed to close timer service", "error", err)
		}
	}
	if d.bus != nil {
		if err := d.bus.Close(); err != nil {
			d.logger.Warn("failed to close redis client", "error", err)
		}
	}
	if err := d.repo.Close(); err != nil {
		d.logger.Warn("failed to close database", "error", err)
	}
}
