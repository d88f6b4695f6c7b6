package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xraph/digigate"
	"github.com/xraph/digigate/subscription"
)

// action is one user-facing operation, shared by the cobra commands and the
// interactive shell.
type action struct {
	name  string
	usage string
	short string
	args  int // exact positional count, or -1 / -2 (see checkArgs)
	run   func(ctx context.Context, a *app, w io.Writer, args []string) error
}

var errUsage = errors.New("usage")

func actions() []action {
	return []action{
		{"status", "status", "Show subscription, trial and usage", 0, runStatus},
		{"plans", "plans", "List purchasable plans", 0, runPlans},
		{"subscribe", "subscribe <plan>", "Buy a plan", 1, runSubscribe},
		{"cancel", "cancel", "Cancel the current subscription", 0, runCancel},
		{"open", "open <product>", "Open a product if the plan allows it", 1, runOpen},
		{"download", "download <product>", "Download a product if the limits allow it", 1, runDownload},
		{"usage", "usage", "Show usage counters", 0, runUsage},
		{"reset", "reset [usage|subscription|all]", "Reset usage counters or the subscription", -2, runReset},
		{"chat", "chat <message>", "Ask the support assistant", -1, runChat},
		{"metrics", "metrics", "Show engine counters for this run", 0, runMetrics},
	}
}

func findAction(name string) (action, bool) {
	for _, act := range actions() {
		if act.name == name {
			return act, true
		}
	}
	return action{}, false
}

// checkArgs validates positional arguments. -1 requires at least one, -2
// allows zero or one.
func (act action) checkArgs(args []string) error {
	switch {
	case act.args == -1 && len(args) == 0,
		act.args == -2 && len(args) > 1,
		act.args >= 0 && len(args) != act.args:
		return fmt.Errorf("%w: %s", errUsage, act.usage)
	}
	return nil
}

func runStatus(ctx context.Context, a *app, w io.Writer, _ []string) error {
	subs := a.session.Subscriptions()
	sub := subs.Load(ctx)
	rec := a.session.Usage().GetUsage(ctx)

	fmt.Fprintf(w, "user:        %s\n", a.session.UserID())
	name := sub.PlanID
	if sub.Plan != nil {
		name = sub.Plan.Name
	}
	fmt.Fprintf(w, "plan:        %s (%s)\n", name, sub.PlanID)
	fmt.Fprintf(w, "status:      %s\n", sub.Status())
	fmt.Fprintf(w, "access:      %t\n", subs.HasAccess())
	if end, ok := sub.TrialEndDate(); ok {
		fmt.Fprintf(w, "trial ends:  %s (%d days left)\n", end.In(a.engine.Location()).Format("2006-01-02 15:04"), subs.TrialDaysLeft())
	}
	if n := subs.TrialNotice(); n != subscription.NoticeNone {
		fmt.Fprintf(w, "notice:      %s\n", n)
	}
	fmt.Fprintf(w, "period ends: %s\n", sub.EndDate.In(a.engine.Location()).Format("2006-01-02"))
	fmt.Fprintf(w, "downloads:   %d today, %d total\n", rec.DailyDownloads, rec.TotalDownloads)
	fmt.Fprintf(w, "products:    %d opened\n", rec.DistinctProducts())
	if left, ok := a.session.RemainingDownloads(ctx); ok {
		fmt.Fprintf(w, "remaining:   %d today\n", left)
	}
	return nil
}

func runPlans(_ context.Context, a *app, w io.Writer, _ []string) error {
	for _, p := range a.engine.Plans() {
		products, downloads := "unlimited", "unlimited"
		if p.HasProductCap() {
			products = fmt.Sprint(p.MaxProducts)
		}
		if p.HasDownloadCap() {
			downloads = fmt.Sprint(p.MaxDownloads)
		}
		price := p.Price.String() + "/" + string(p.Duration)
		if !p.Price.IsPositive() {
			price = "free"
		}
		marker := ""
		if p.Popular {
			marker = " *"
		}
		fmt.Fprintf(w, "%-12s %-12s %16s  products: %s  downloads: %s%s\n",
			p.ID, p.Name, price, products, downloads, marker)
	}
	return nil
}

func runSubscribe(ctx context.Context, a *app, w io.Writer, args []string) error {
	subs := a.session.Subscriptions()
	subs.Load(ctx)

	sub, err := subs.SubscribeToPlan(ctx, args[0])
	if err != nil {
		if errors.Is(err, digigate.ErrPlanNotFound) {
			return fmt.Errorf("unknown plan %q; run 'plans' to list them", args[0])
		}
		return err
	}
	fmt.Fprintf(w, "subscribed to %s until %s\n", sub.Plan.Name, sub.EndDate.In(a.engine.Location()).Format("2006-01-02"))
	return nil
}

func runCancel(ctx context.Context, a *app, w io.Writer, _ []string) error {
	sub, err := a.session.Subscriptions().Cancel(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "cancelled %s; access ends %s\n", sub.PlanID, sub.EndDate.In(a.engine.Location()).Format("2006-01-02"))
	return nil
}

func runOpen(ctx context.Context, a *app, w io.Writer, args []string) error {
	productID := args[0]
	res := a.session.CanAccessProduct(ctx, productID)
	if !res.Allowed {
		fmt.Fprintf(w, "denied: %s\n", res.Reason)
		return nil
	}
	if err := a.session.Usage().RecordAccess(ctx, productID); err != nil {
		return err
	}
	fmt.Fprintf(w, "opened %s\n", productID)
	return nil
}

func runDownload(ctx context.Context, a *app, w io.Writer, args []string) error {
	productID := args[0]
	res := a.session.CanDownload(ctx)
	if !res.Allowed {
		fmt.Fprintf(w, "denied: %s\n", res.Reason)
		return nil
	}
	if err := a.session.Usage().RecordDownload(ctx, productID); err != nil {
		return err
	}
	rec := a.session.Usage().GetUsage(ctx)
	fmt.Fprintf(w, "downloaded %s (%d today, %d total)\n", productID, rec.DailyDownloads, rec.TotalDownloads)
	return nil
}

func runUsage(ctx context.Context, a *app, w io.Writer, _ []string) error {
	rec := a.session.Usage().GetUsage(ctx)
	fmt.Fprintf(w, "date:      %s\n", rec.LastResetDate)
	fmt.Fprintf(w, "today:     %d\n", rec.DailyDownloads)
	fmt.Fprintf(w, "total:     %d\n", rec.TotalDownloads)
	fmt.Fprintf(w, "products:  %s\n", strings.Join(rec.ProductsAccessed, ", "))
	return nil
}

func runReset(ctx context.Context, a *app, w io.Writer, args []string) error {
	what := "usage"
	if len(args) == 1 {
		what = args[0]
	}
	if !slices.Contains([]string{"usage", "subscription", "all"}, what) {
		return fmt.Errorf("%w: reset [usage|subscription|all]", errUsage)
	}

	if what != "subscription" {
		if err := a.session.Usage().ResetUsage(ctx); err != nil {
			return err
		}
	}
	if what != "usage" {
		if err := a.session.Subscriptions().Reset(ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "reset %s\n", what)
	return nil
}

func runChat(ctx context.Context, a *app, w io.Writer, args []string) error {
	msg, res := a.support.Reply(ctx, strings.Join(args, " "))
	fmt.Fprintln(w, msg.Text)
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "  > %s\n", s)
	}
	if res.EscalateToHuman {
		fmt.Fprintln(w, "[transferred to a human agent]")
	}
	return nil
}

func runMetrics(_ context.Context, a *app, w io.Writer, _ []string) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%-50s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%-50s count=%d sum=%g\n", mf.GetName(), m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}
