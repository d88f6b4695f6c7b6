package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// DefaultTimeout bounds each hook call.
const DefaultTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery so an emit only walks interested plugins.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                  []OnInit
	onShutdown              []OnShutdown
	onTrialStarted          []OnTrialStarted
	onTrialExpired          []OnTrialExpired
	onSubscribed            []OnSubscribed
	onSubscriptionCancelled []OnSubscriptionCancelled
	onSubscriptionReset     []OnSubscriptionReset
	onDownloadRecorded      []OnDownloadRecorded
	onProductAccessed       []OnProductAccessed
	onDailyReset            []OnDailyReset
	onUsageReset            []OnUsageReset
	onDownloadDenied        []OnDownloadDenied
	onAccessDenied          []OnAccessDenied
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:  slog.Default(),
		timeout: DefaultTimeout,
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout sets the per-hook timeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTrialStarted); ok {
		r.onTrialStarted = append(r.onTrialStarted, v)
	}
	if v, ok := p.(OnTrialExpired); ok {
		r.onTrialExpired = append(r.onTrialExpired, v)
	}
	if v, ok := p.(OnSubscribed); ok {
		r.onSubscribed = append(r.onSubscribed, v)
	}
	if v, ok := p.(OnSubscriptionCancelled); ok {
		r.onSubscriptionCancelled = append(r.onSubscriptionCancelled, v)
	}
	if v, ok := p.(OnSubscriptionReset); ok {
		r.onSubscriptionReset = append(r.onSubscriptionReset, v)
	}
	if v, ok := p.(OnDownloadRecorded); ok {
		r.onDownloadRecorded = append(r.onDownloadRecorded, v)
	}
	if v, ok := p.(OnProductAccessed); ok {
		r.onProductAccessed = append(r.onProductAccessed, v)
	}
	if v, ok := p.(OnDailyReset); ok {
		r.onDailyReset = append(r.onDailyReset, v)
	}
	if v, ok := p.(OnUsageReset); ok {
		r.onUsageReset = append(r.onUsageReset, v)
	}
	if v, ok := p.(OnDownloadDenied); ok {
		r.onDownloadDenied = append(r.onDownloadDenied, v)
	}
	if v, ok := p.(OnAccessDenied); ok {
		r.onAccessDenied = append(r.onAccessDenied, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", implementedInterfaces(p),
	)

	return nil
}

var hookTypes = []struct {
	name string
	typ  reflect.Type
}{
	{"OnInit", reflect.TypeFor[OnInit]()},
	{"OnShutdown", reflect.TypeFor[OnShutdown]()},
	{"OnTrialStarted", reflect.TypeFor[OnTrialStarted]()},
	{"OnTrialExpired", reflect.TypeFor[OnTrialExpired]()},
	{"OnSubscribed", reflect.TypeFor[OnSubscribed]()},
	{"OnSubscriptionCancelled", reflect.TypeFor[OnSubscriptionCancelled]()},
	{"OnSubscriptionReset", reflect.TypeFor[OnSubscriptionReset]()},
	{"OnDownloadRecorded", reflect.TypeFor[OnDownloadRecorded]()},
	{"OnProductAccessed", reflect.TypeFor[OnProductAccessed]()},
	{"OnDailyReset", reflect.TypeFor[OnDailyReset]()},
	{"OnUsageReset", reflect.TypeFor[OnUsageReset]()},
	{"OnDownloadDenied", reflect.TypeFor[OnDownloadDenied]()},
	{"OnAccessDenied", reflect.TypeFor[OnAccessDenied]()},
}

// implementedInterfaces returns the hook names p implements.
func implementedInterfaces(p Plugin) []string {
	var names []string
	v := reflect.TypeOf(p)
	for _, h := range hookTypes {
		if v.Implements(h.typ) {
			names = append(names, h.name)
		}
	}
	return names
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine any) {
	emit(ctx, r, "OnInit", snapshot(r, &r.onInit), func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	emit(ctx, r, "OnShutdown", snapshot(r, &r.onShutdown), func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitTrialStarted emits a trial started event.
func (r *Registry) EmitTrialStarted(ctx context.Context, sub *subscription.Subscription) {
	emit(ctx, r, "OnTrialStarted", snapshot(r, &r.onTrialStarted), func(p OnTrialStarted) error {
		return p.OnTrialStarted(ctx, sub)
	})
}

// EmitTrialExpired emits a trial expired event.
func (r *Registry) EmitTrialExpired(ctx context.Context, sub *subscription.Subscription) {
	emit(ctx, r, "OnTrialExpired", snapshot(r, &r.onTrialExpired), func(p OnTrialExpired) error {
		return p.OnTrialExpired(ctx, sub)
	})
}

// EmitSubscribed emits a plan purchase event.
func (r *Registry) EmitSubscribed(ctx context.Context, sub, previous *subscription.Subscription) {
	emit(ctx, r, "OnSubscribed", snapshot(r, &r.onSubscribed), func(p OnSubscribed) error {
		return p.OnSubscribed(ctx, sub, previous)
	})
}

// EmitSubscriptionCancelled emits a cancellation event.
func (r *Registry) EmitSubscriptionCancelled(ctx context.Context, sub *subscription.Subscription) {
	emit(ctx, r, "OnSubscriptionCancelled", snapshot(r, &r.onSubscriptionCancelled), func(p OnSubscriptionCancelled) error {
		return p.OnSubscriptionCancelled(ctx, sub)
	})
}

// EmitSubscriptionReset emits a subscription reset event.
func (r *Registry) EmitSubscriptionReset(ctx context.Context, userID string) {
	emit(ctx, r, "OnSubscriptionReset", snapshot(r, &r.onSubscriptionReset), func(p OnSubscriptionReset) error {
		return p.OnSubscriptionReset(ctx, userID)
	})
}

// EmitDownloadRecorded emits a download event.
func (r *Registry) EmitDownloadRecorded(ctx context.Context, event *usage.DownloadEvent) {
	emit(ctx, r, "OnDownloadRecorded", snapshot(r, &r.onDownloadRecorded), func(p OnDownloadRecorded) error {
		return p.OnDownloadRecorded(ctx, event)
	})
}

// EmitProductAccessed emits a first product access event.
func (r *Registry) EmitProductAccessed(ctx context.Context, userID, productID string) {
	emit(ctx, r, "OnProductAccessed", snapshot(r, &r.onProductAccessed), func(p OnProductAccessed) error {
		return p.OnProductAccessed(ctx, userID, productID)
	})
}

// EmitDailyReset emits a daily rollover event.
func (r *Registry) EmitDailyReset(ctx context.Context, userID string, previous usage.Record) {
	emit(ctx, r, "OnDailyReset", snapshot(r, &r.onDailyReset), func(p OnDailyReset) error {
		return p.OnDailyReset(ctx, userID, previous)
	})
}

// EmitUsageReset emits an explicit usage reset event.
func (r *Registry) EmitUsageReset(ctx context.Context, userID string) {
	emit(ctx, r, "OnUsageReset", snapshot(r, &r.onUsageReset), func(p OnUsageReset) error {
		return p.OnUsageReset(ctx, userID)
	})
}

// EmitDownloadDenied emits a download denial.
func (r *Registry) EmitDownloadDenied(ctx context.Context, userID string, result entitlement.Result) {
	emit(ctx, r, "OnDownloadDenied", snapshot(r, &r.onDownloadDenied), func(p OnDownloadDenied) error {
		return p.OnDownloadDenied(ctx, userID, result)
	})
}

// EmitAccessDenied emits a product access denial.
func (r *Registry) EmitAccessDenied(ctx context.Context, userID, productID string, result entitlement.Result) {
	emit(ctx, r, "OnAccessDenied", snapshot(r, &r.onAccessDenied), func(p OnAccessDenied) error {
		return p.OnAccessDenied(ctx, userID, productID, result)
	})
}

// snapshot reads a cached hook list under the read lock.
func snapshot[T any](r *Registry, list *[]T) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *list
}

// emit calls fn for every plugin in order. Failures are logged, never returned.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, plugins []T, fn func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return fn(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block an entitlement decision.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
