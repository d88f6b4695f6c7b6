package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/store"
	"github.com/xraph/digigate/store/memory"
	"github.com/xraph/digigate/subscription"
	"github.com/xraph/digigate/usage"
)

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestScopedKey(t *testing.T) {
	assert.Equal(t, "user_usage:u1", store.ScopedKey(store.KeyUsage, "u1"))
	assert.Equal(t, "trial_start_date:u1", store.ScopedKey(store.KeyTrialStartDate, "u1"))
}

func TestRecordsSubscription(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	r := store.NewRecords(kv)

	_, err := r.GetSubscription(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	sub := subscription.NewTrial("u1", plan.DefaultTrial(), t0)
	require.NoError(t, r.SaveSubscription(ctx, sub))
	require.NoError(t, r.SetTrialStart(ctx, "u1", t0))

	got, err := r.GetSubscription(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusTrial, got.Status())
	assert.Equal(t, sub.ID.String(), got.ID.String())
	end, ok := got.TrialEndDate()
	require.True(t, ok)
	assert.True(t, end.Equal(t0.Add(subscription.TrialLength)))

	start, err := r.TrialStart(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, start.Equal(t0))

	assert.Equal(t, []string{"trial_start_date:u1", "user_subscription:u1"}, kv.Keys(""))

	require.NoError(t, r.DeleteSubscription(ctx, "u1"))
	assert.Empty(t, kv.Keys(""))
}

func TestRecordsUsage(t *testing.T) {
	ctx := context.Background()
	r := store.NewRecords(memory.New())

	_, err := r.GetUsage(ctx, "u1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec := usage.New("2026-05-04").WithDownload("p1")
	require.NoError(t, r.SaveUsage(ctx, "u1", rec))

	got, err := r.GetUsage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRecordsMalformed(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	r := store.NewRecords(kv)

	require.NoError(t, kv.Set(ctx, "user_usage:u1", []byte("garbage")))
	_, err := r.GetUsage(ctx, "u1")
	assert.ErrorIs(t, err, usage.ErrMalformed)

	require.NoError(t, kv.Set(ctx, "user_subscription:u1", []byte("garbage")))
	_, err = r.GetSubscription(ctx, "u1")
	assert.ErrorIs(t, err, subscription.ErrMalformed)
}
