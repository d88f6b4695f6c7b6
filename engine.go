package digigate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/plugin"
	"github.com/xraph/digigate/store"
)

// Engine is the entitlement engine. It owns the store, the plan catalog and
// the plugin registry, and hands out one Session per user.
type Engine struct {
	store   store.Store
	records *store.Records
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   clockwork.Clock
	catalog plan.Source
	loc     *time.Location

	mu       sync.Mutex
	sessions map[string]*Session
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		records:  store.NewRecords(s),
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		clock:    clockwork.NewRealClock(),
		catalog:  plan.Default(),
		loc:      time.UTC,
		sessions: make(map[string]*Session),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithPluginTimeout bounds each plugin hook call.
func WithPluginTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.plugins.WithTimeout(d)
	}
}

// WithClock replaces the wall clock. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithCatalog sets the plan catalog.
func WithCatalog(c plan.Source) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLocation sets the time zone in which calendar days are counted for
// the daily download reset.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	// Migrate database
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	// Initialize plugins
	e.plugins.EmitInit(ctx, e)

	e.logger.Info("digigate started",
		"plans", len(e.catalog.List()),
		"plugins", e.plugins.Count(),
		"location", e.loc.String(),
	)

	return nil
}

// Stop shuts down plugins and closes the store.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Ping checks the store.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Session returns the session for userID, creating it on first use.
// Nothing is read from the store until the session is used.
func (e *Engine) Session(userID string) (*Session, error) {
	if userID == "" {
		return nil, ValidationError{Field: "user_id", Message: "must not be empty"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if s, ok := e.sessions[userID]; ok {
		return s, nil
	}
	s := newSession(e, userID)
	e.sessions[userID] = s
	return s, nil
}

// Forget drops the cached session for userID.
func (e *Engine) Forget(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, userID)
}

// Plans lists the purchasable plans in catalog order.
func (e *Engine) Plans() []*plan.Plan {
	return e.catalog.List()
}

// Plan returns a purchasable plan by id.
func (e *Engine) Plan(planID string) (*plan.Plan, error) {
	p, ok := e.catalog.Get(planID)
	if !ok {
		return nil, ErrPlanNotFound
	}
	return p, nil
}

// TrialPlan returns the trial template.
func (e *Engine) TrialPlan() *plan.Plan {
	return e.catalog.Trial()
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry.
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Clock returns the engine clock.
func (e *Engine) Clock() clockwork.Clock { return e.clock }

// Location returns the time zone used for daily resets.
func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}
