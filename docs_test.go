package digigate_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/store/memory"
)

// TestDocumentationExamples verifies that the package documentation examples work.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		ctx := context.Background()

		engine := digigate.New(memory.New(),
			digigate.WithLogger(slog.Default()),
		)
		if err := engine.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer engine.Stop()

		s, err := engine.Session("user-1")
		if err != nil {
			t.Fatal(err)
		}

		sub := s.Subscriptions().Load(ctx)
		if !sub.IsTrialActive() {
			t.Fatalf("expected a trial, got %s", sub.Status())
		}

		if res := s.CanDownload(ctx); !res.Allowed {
			t.Fatalf("expected download allowed: %s", res.Reason)
		}
		if err := s.Usage().RecordDownload(ctx, "ebook-42"); err != nil {
			t.Fatal(err)
		}

		if got := s.Usage().GetUsage(ctx).TotalDownloads; got != 1 {
			t.Fatalf("TotalDownloads = %d, want 1", got)
		}
	})

	t.Run("UpgradeExample", func(t *testing.T) {
		ctx := context.Background()
		engine := digigate.New(memory.New())

		s, _ := engine.Session("user-2")
		sub, err := s.Subscriptions().SubscribeToPlan(ctx, "premium")
		if err != nil {
			t.Fatal(err)
		}
		if sub.Plan.Price.String() == "" {
			t.Fatal("expected a priced plan")
		}
		if !s.Subscriptions().IsSubscriptionActive() {
			t.Fatal("expected an active subscription")
		}
	})
}
