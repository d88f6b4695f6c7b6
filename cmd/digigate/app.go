package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xraph/digigate"
	audithook "github.com/xraph/digigate/audit_hook"
	"github.com/xraph/digigate/observability"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/store"
	"github.com/xraph/digigate/store/memory"
	redisstore "github.com/xraph/digigate/store/redis"
	"github.com/xraph/digigate/support"
)

// app is one CLI run: an engine, the session of the configured user and
// the support responder.
type app struct {
	engine   *digigate.Engine
	session  *digigate.Session
	support  *support.Responder
	registry *prometheus.Registry
	logger   *slog.Logger
}

func openStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.Store {
	case "", "memory":
		return memory.New(), nil
	case "redis":
		return redisstore.Open(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown store %q (want memory or redis)", cfg.Store)
	}
}

// newApp builds and starts the engine. extra options are applied last.
func newApp(ctx context.Context, cfg Config, s store.Store, logger *slog.Logger, extra ...digigate.Option) (*app, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.Timezone, err)
	}

	reg := prometheus.NewRegistry()
	audit := audithook.New(audithook.RecorderFunc(func(ctx context.Context, ev *audithook.AuditEvent) error {
		logger.DebugContext(ctx, "audit",
			"action", ev.Action,
			"resource", ev.Resource,
			"resource_id", ev.ResourceID,
			"outcome", ev.Outcome,
		)
		return nil
	}), audithook.WithLogger(logger))

	opts := []digigate.Option{
		digigate.WithLogger(logger),
		digigate.WithLocation(loc),
		digigate.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))),
		digigate.WithPlugin(audit),
	}
	if cfg.PlansFile != "" {
		catalog, err := plan.LoadFile(cfg.PlansFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, digigate.WithCatalog(catalog))
	}
	opts = append(opts, extra...)

	eng := digigate.New(s, opts...)
	if err := eng.Start(ctx); err != nil {
		return nil, err
	}

	sess, err := eng.Session(cfg.UserID)
	if err != nil {
		_ = eng.Stop()
		return nil, err
	}

	return &app{
		engine:   eng,
		session:  sess,
		support:  support.NewResponder(support.WithLogger(logger), support.WithClock(eng.Clock())),
		registry: reg,
		logger:   logger,
	}, nil
}

func (a *app) close() error {
	return a.engine.Stop()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
