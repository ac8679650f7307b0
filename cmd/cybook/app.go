package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/alexandrebha/cybook/catalog"
	"github.com/alexandrebha/cybook/circulation"
	"github.com/alexandrebha/cybook/circulation/oteladapters"
	"github.com/alexandrebha/cybook/circulation/postgresengine"
	"github.com/alexandrebha/cybook/library/httpapi"
	"github.com/alexandrebha/cybook/library/shared/shell"
	"github.com/alexandrebha/cybook/library/shared/shell/config"
)

const (
	instrumentationName = "github.com/alexandrebha/cybook"
	shutdownTimeout     = 10 * time.Second
)

var errNoEngine = errors.New("no database engine is connected")

// app holds what every subcommand needs. The connection is opened lazily on the first
// command that needs it, so --help and usage errors never touch the database.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	handlers    *httpapi.Handlers
	engine      *postgresengine.Engine
	closers     []func(ctx context.Context) error
	interactive bool
}

func newApp(cfg *config.Config, out, errOut io.Writer) *app {
	return &app{
		cfg:    cfg,
		logger: config.NewLogger(cfg.Log, errOut),
		out:    out,
		errOut: errOut,
		now:    time.Now,
	}
}

func (a *app) connected() bool {
	return a.handlers != nil
}

// connect validates the (possibly flag-overridden) configuration and wires the engine,
// the catalog client, telemetry, and the observable handlers.
func (a *app) connect(ctx context.Context) error {
	if a.connected() {
		return nil
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.logger = config.NewLogger(a.cfg.Log, a.errOut)

	obs, err := a.startTelemetry(ctx)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}

	engine, closeEngine, err := config.OpenEngine(ctx, a.cfg.Database, obs.engineOptions()...)
	if err != nil {
		return errors.Join(circulation.ErrStoreUnavailable, err)
	}

	a.onClose(func(context.Context) error {
		closeEngine()
		return nil
	})

	catalogClient, err := a.openCatalog()
	if err != nil {
		return err
	}

	handlers, err := newHandlers(engine, catalogClient, obs)
	if err != nil {
		return err
	}

	a.engine = engine
	a.handlers = &handlers

	a.logger.Debug("connected",
		"adapter", a.cfg.Database.Adapter,
		"replica", a.cfg.Database.ReplicaURL != "",
		"telemetry", a.cfg.Telemetry.Enabled())

	return nil
}

func (a *app) startTelemetry(ctx context.Context) (observability, error) {
	obs := observability{logger: a.logger}

	if !a.cfg.Telemetry.Enabled() {
		return obs, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, a.cfg.Telemetry, version)
	if err != nil {
		return observability{}, err
	}

	a.onClose(providers.Shutdown)

	obs.contextualLogger = oteladapters.NewSlogBridgeLoggerWithHandler(a.logger.Handler())

	if providers.TracerProvider != nil {
		obs.tracing = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))
	}

	if providers.MeterProvider != nil {
		obs.metrics = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
	}

	return obs, nil
}

func (a *app) openCatalog() (*catalog.Client, error) {
	cache, err := catalog.OpenBadgerCache(a.cfg.Catalog.CacheDir, a.cfg.Catalog.CacheTTL)
	if err != nil {
		return nil, err
	}

	a.onClose(func(context.Context) error {
		return cache.Close()
	})

	return catalog.New(
		catalog.WithBaseURL(a.cfg.Catalog.BaseURL),
		catalog.WithTimeout(a.cfg.Catalog.Timeout),
		catalog.WithRateLimit(a.cfg.Catalog.RateInterval, a.cfg.Catalog.RateBurst),
		catalog.WithCache(cache),
		catalog.WithLogger(a.logger),
	), nil
}

func (a *app) onClose(fn func(ctx context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, fn := range slices.Backward(a.closers) {
		if err := fn(ctx); err != nil {
			a.logger.Warn("cleanup failed", shell.LogAttrError, err.Error())
		}
	}

	a.closers = nil
}
