package digigate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xraph/digigate/usage"
)

// UsageTracker owns one user's download counters.
type UsageTracker struct {
	engine *Engine
	userID string
	subs   *SubscriptionManager

	mu sync.Mutex
}

// GetUsage returns today's view of the usage record. A record dated another
// day has its daily counter zeroed and is written back. A missing record is
// created. Storage failures are logged and yield a zero record that is not
// persisted.
func (t *UsageTracker) GetUsage(ctx context.Context) usage.Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, _ := t.load(ctx)
	return rec.Clone()
}

// load must be called with t.mu held. On a read failure other than a
// missing record it returns a zero record for today together with the
// error; that record must not be written back.
func (t *UsageTracker) load(ctx context.Context) (usage.Record, error) {
	e := t.engine
	today := usage.DateKey(e.now(), e.loc)

	stored, err := e.records.GetUsage(ctx, t.userID)
	switch {
	case errors.Is(err, ErrRecordNotFound):
		rec := usage.New(today)
		if err := e.records.SaveUsage(ctx, t.userID, rec); err != nil {
			e.logger.Warn("digigate: persist new usage record failed",
				"user_id", t.userID,
				"error", err,
			)
		}
		return rec, nil
	case err != nil:
		e.logger.Warn("digigate: load usage failed",
			"user_id", t.userID,
			"error", err,
		)
		return usage.New(today), err
	}

	rec, changed := stored.Rollover(today)
	if changed {
		if err := e.records.SaveUsage(ctx, t.userID, rec); err != nil {
			e.logger.Warn("digigate: persist daily reset failed",
				"user_id", t.userID,
				"error", err,
			)
		}
		e.logger.Debug("daily downloads reset",
			"user_id", t.userID,
			"previous_date", stored.LastResetDate,
			"date", today,
		)
		e.plugins.EmitDailyReset(ctx, t.userID, stored)
	}
	return rec, nil
}

// RecordDownload counts one download of productID and remembers the
// product. Every call counts, including repeated downloads of one product.
// A record that cannot be read is never overwritten.
func (t *UsageTracker) RecordDownload(ctx context.Context, productID string) error {
	if productID == "" {
		return ValidationError{Field: "product_id", Message: "must not be empty"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.engine
	rec, err := t.load(ctx)
	if err != nil {
		return fmt.Errorf("digigate: load usage: %w", err)
	}
	first := !rec.HasAccessed(productID)
	rec = rec.WithDownload(productID)

	if err := e.records.SaveUsage(ctx, t.userID, rec); err != nil {
		e.logger.Error("digigate: record download failed",
			"user_id", t.userID,
			"product_id", productID,
			"error", err,
		)
		return fmt.Errorf("digigate: save usage: %w", err)
	}

	planID := ""
	if sub := t.subs.Current(); sub != nil {
		planID = sub.PlanID
	}
	ev := usage.NewDownloadEvent(t.userID, planID, productID, rec, first, e.now())

	e.logger.Debug("download recorded",
		"user_id", t.userID,
		"product_id", productID,
		"daily", rec.DailyDownloads,
		"total", rec.TotalDownloads,
	)
	e.plugins.EmitDownloadRecorded(ctx, ev)
	return nil
}

// RecordAccess remembers that productID was opened without counting a
// download. Opening a product twice writes nothing.
func (t *UsageTracker) RecordAccess(ctx context.Context, productID string) error {
	if productID == "" {
		return ValidationError{Field: "product_id", Message: "must not be empty"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.engine
	rec, err := t.load(ctx)
	if err != nil {
		return fmt.Errorf("digigate: load usage: %w", err)
	}
	rec, added := rec.WithAccess(productID)
	if !added {
		return nil
	}

	if err := e.records.SaveUsage(ctx, t.userID, rec); err != nil {
		return fmt.Errorf("digigate: save usage: %w", err)
	}
	e.plugins.EmitProductAccessed(ctx, t.userID, productID)
	return nil
}

// ResetUsage overwrites the record with zero counters dated today.
func (t *UsageTracker) ResetUsage(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.engine
	rec := usage.New(usage.DateKey(e.now(), e.loc))
	if err := e.records.SaveUsage(ctx, t.userID, rec); err != nil {
		return fmt.Errorf("digigate: reset usage: %w", err)
	}

	e.logger.Info("usage reset", "user_id", t.userID)
	e.plugins.EmitUsageReset(ctx, t.userID)
	return nil
}
