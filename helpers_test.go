package digigate_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/entitlement"
	"github.com/xraph/digigate/store/memory"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

// t0 is a Monday morning in UTC.
var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

var errBackend = errors.New("backend unavailable")

// flakyStore wraps a memory store and fails reads or writes on demand.
type flakyStore struct {
	*memory.Store

	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New()}
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, errBackend
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return errBackend
	}
	return f.Store.Set(ctx, key, value)
}

func (f *flakyStore) setFailures(get, set bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet, f.failSet = get, set
}

func (f *flakyStore) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	engine *digigate.Engine
	store  *flakyStore
	clock  *clockwork.FakeClock
}

func newFixture(t *testing.T, opts ...digigate.Option) *fixture {
	t.Helper()
	f := &fixture{
		store: newFlakyStore(),
		clock: clockwork.NewFakeClockAt(t0),
	}
	opts = append([]digigate.Option{
		digigate.WithClock(f.clock),
		digigate.WithLogger(quietLogger()),
	}, opts...)
	f.engine = digigate.New(f.store, opts...)
	require.NoError(t, f.engine.Start(context.Background()))
	return f
}

func (f *fixture) session(t *testing.T, userID string) *digigate.Session {
	t.Helper()
	s, err := f.engine.Session(userID)
	require.NoError(t, err)
	return s
}

// events collects plugin hook calls in order.
type events struct {
	mu   sync.Mutex
	list []string
}

func (e *events) Name() string { return "events" }

func (e *events) add(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.list = append(e.list, s)
	return nil
}

func (e *events) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.list...)
}

func (e *events) OnTrialStarted(_ context.Context, sub *subscription.Subscription) error {
	return e.add("trial_started:" + sub.UserID)
}

func (e *events) OnTrialExpired(_ context.Context, sub *subscription.Subscription) error {
	return e.add("trial_expired:" + sub.UserID)
}

func (e *events) OnSubscribed(_ context.Context, sub, _ *subscription.Subscription) error {
	return e.add("subscribed:" + sub.PlanID)
}

func (e *events) OnSubscriptionCancelled(_ context.Context, sub *subscription.Subscription) error {
	return e.add("cancelled:" + sub.PlanID)
}

func (e *events) OnDownloadRecorded(_ context.Context, ev *usage.DownloadEvent) error {
	return e.add("download:" + ev.ProductID)
}

func (e *events) OnDailyReset(_ context.Context, userID string, _ usage.Record) error {
	return e.add("daily_reset:" + userID)
}

func (e *events) OnDownloadDenied(_ context.Context, _ string, res entitlement.Result) error {
	return e.add("download_denied:" + string(res.Rule))
}

func (e *events) OnAccessDenied(_ context.Context, _, productID string, _ entitlement.Result) error {
	return e.add("access_denied:" + productID)
}
