package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"digital.vasic.defecthunt/pkg/bank"
	"digital.vasic.defecthunt/pkg/engine"
	"digital.vasic.defecthunt/pkg/env"
	"digital.vasic.defecthunt/pkg/logging"
	"digital.vasic.defecthunt/pkg/metrics"
	"digital.vasic.defecthunt/pkg/notify"
	"digital.vasic.defecthunt/pkg/plugin"
	"digital.vasic.defecthunt/pkg/storage"
	"digital.vasic.defecthunt/pkg/storage/postgres"
	"digital.vasic.defecthunt/pkg/storage/redisstore"
	"digital.vasic.defecthunt/pkg/storage/sqlite"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// globalFlags are the persistent flags shared by every command.
// Non-empty flag values override the environment.
type globalFlags struct {
	envFile    string
	bankPath   string
	store      string
	sqlitePath string
	logFile    string
	verbose    bool
	trace      bool
	metricsOut string
}

// app holds everything a command needs. Parts are opened on
// demand so that validate never touches a store.
type app struct {
	flags    *globalFlags
	settings env.Settings
	log      logging.Logger
	metrics  *metrics.PrometheusMetrics
	hub      *notify.Hub

	snapshot  *bank.Snapshot
	store     storage.Store
	redis     *goredis.Client
	publisher *notify.RedisPublisher
	amqp      *notify.AMQPPublisher
	tracer    trace.TracerProvider
	engine    *engine.Engine

	closers []func() error
}

func newApp(flags *globalFlags) (*app, error) {
	loader := env.NewLoader()
	envFile := flags.envFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := loader.LoadIfExists(envFile); err != nil {
		return nil, err
	}

	settings, err := env.LoadSettings(loader)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if flags.bankPath != "" {
		settings.BankPath = flags.bankPath
	}
	if flags.store != "" {
		settings.Store = flags.store
	}
	if flags.sqlitePath != "" {
		settings.SQLitePath = flags.sqlitePath
	}
	if flags.logFile != "" {
		settings.LogFile = flags.logFile
	}
	if flags.verbose {
		settings.Verbose = true
	}
	if flags.trace {
		settings.Trace = true
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	zl, err := logging.NewZapLogger(settings.LogMode, settings.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	var base logging.Logger = zl
	if settings.LogFile != "" {
		fl, err := logging.NewZapFileLogger(settings.LogFile, settings.Verbose)
		if err != nil {
			_ = zl.Close()
			return nil, err
		}
		base = logging.NewTeeLogger(zl, fl)
	}
	log := logging.NewRewardRedactingLogger(base, settings.Secrets()...)

	a := &app{
		flags:    flags,
		settings: settings,
		log:      log,
		metrics:  metrics.NewPrometheusMetrics(),
		hub:      notify.NewHub(notify.WithHubLogger(log)),
	}
	a.closers = append(a.closers, log.Close)

	fields := make([]logging.Field, 0, 8)
	for k, v := range settings.Redacted() {
		fields = append(fields, logging.StringField(k, v))
	}
	log.Debug("settings loaded", fields...)
	return a, nil
}

// openBank loads and compiles the challenge bank with the builtin
// predicate plugins.
func (a *app) openBank() (*bank.Snapshot, error) {
	if a.snapshot != nil {
		return a.snapshot, nil
	}
	predicates, err := plugin.NewPredicateEngine(
		&plugin.PluginContext{Logger: a.log},
		plugin.Builtin()...,
	)
	if err != nil {
		return nil, fmt.Errorf("init plugins: %w", err)
	}
	snap, err := bank.Open(a.settings.BankPath, predicates)
	if err != nil {
		return nil, err
	}
	a.log.Debug("bank loaded",
		logging.StringField("path", a.settings.BankPath),
		logging.IntField("challenges", snap.Registry.Count()),
		logging.IntField("badges", snap.Catalog.Count()),
	)
	a.snapshot = snap
	return snap, nil
}

// openStore connects the configured backend.
func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s := a.settings

	switch s.Store {
	case env.StoreMemory:
		a.store = storage.NewMemory()
	case env.StoreSQLite:
		st, err := sqlite.Open(s.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		a.store = st
	case env.StoreRedis:
		st, err := redisstore.New(ctx, redisstore.Config{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
			Prefix:   "defecthunt:",
			Timeout:  s.StoreTimeout,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		a.store = a.resilient(st)
		a.redis = st.Client()
	case env.StorePostgres:
		openCtx, cancel := context.WithTimeout(ctx, s.StoreTimeout)
		defer cancel()
		st, err := postgres.Open(openCtx, s.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, st.Close)
		a.store = a.resilient(st)
	default:
		return nil, fmt.Errorf("unknown store %q", s.Store)
	}

	a.log.Debug("store opened", logging.StringField("store", s.Store))
	return a.store, nil
}

// resilient adds retries and a circuit breaker in front of a
// network store.
func (a *app) resilient(st storage.Store) storage.Store {
	cfg := storage.DefaultResilienceConfig()
	cfg.Attempts = a.settings.StoreAttempts
	cfg.Logger = a.log
	return storage.NewResilient(st, cfg)
}

// sink returns where engine events go: the in-process hub, the
// shared pub/sub channel with a Redis store, and the AMQP queue
// when one is configured.
func (a *app) sink() (notify.Sink, error) {
	sinks := notify.MultiSink{a.hub}
	if a.redis != nil {
		if a.publisher == nil {
			a.publisher = notify.NewRedisPublisher(a.redis, a.settings.RedisChannel,
				notify.WithPublisherLogger(a.log),
				notify.WithPublishTimeout(a.settings.StoreTimeout),
			)
		}
		sinks = append(sinks, a.publisher)
	}
	if a.settings.AMQPURL != "" {
		if a.amqp == nil {
			p, err := notify.NewAMQPPublisher(a.settings.AMQPURL, a.settings.AMQPQueue,
				notify.WithAMQPLogger(a.log),
				notify.WithAMQPTimeout(a.settings.StoreTimeout),
			)
			if err != nil {
				return nil, err
			}
			a.closers = append(a.closers, p.Close)
			a.amqp = p
		}
		sinks = append(sinks, a.amqp)
	}
	return sinks, nil
}

// tracerProvider prints spans to stderr when tracing is enabled
// and traces nothing otherwise.
func (a *app) tracerProvider() (trace.TracerProvider, error) {
	if a.tracer != nil {
		return a.tracer, nil
	}
	if !a.settings.Trace {
		a.tracer = noop.NewTracerProvider()
		return a.tracer, nil
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	a.closers = append(a.closers, func() error {
		return tp.Shutdown(context.Background())
	})
	a.tracer = tp
	return tp, nil
}

// openEngine wires bank, store, sinks and metrics into an engine.
func (a *app) openEngine(ctx context.Context) (*engine.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}
	snap, err := a.openBank()
	if err != nil {
		return nil, err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	sink, err := a.sink()
	if err != nil {
		return nil, err
	}
	tp, err := a.tracerProvider()
	if err != nil {
		return nil, err
	}
	a.engine = engine.New(snap.Registry, snap.Catalog, store,
		engine.WithSink(sink),
		engine.WithMetrics(a.metrics),
		engine.WithLogger(a.log),
		engine.WithTracerProvider(tp),
	)
	return a.engine, nil
}

// close writes the metrics file, if requested, and releases
// everything opened, in reverse order.
func (a *app) close() error {
	var errs []error
	if a.flags.metricsOut != "" {
		if err := a.writeMetrics(a.flags.metricsOut); err != nil {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) writeMetrics(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if _, err := a.metrics.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write metrics: %w", err)
	}
	return f.Close()
}
