// Package digigate provides the entitlement engine behind a digital products
// marketplace: free trials, plan subscriptions, download counters and the
// access policy that combines them.
//
// digigate is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - A 7-day trial started automatically on a user's first visit
//   - Plan subscriptions with cancellation and auto-renew tracking
//   - Daily and lifetime download counters with a lazy calendar-day reset
//   - Download and product access checks with human readable reasons
//   - Pluggable persistence (memory, SQLite, PostgreSQL, MongoDB, Redis)
//   - Lifecycle hooks for metrics and audit trails
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/digigate"
//	    "github.com/xraph/digigate/store/memory"
//	)
//
//	engine := digigate.New(memory.New())
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Sessions
//
// Every operation is scoped to a user through a Session:
//
//	s, err := engine.Session(userID)
//
//	sub := s.Subscriptions().Load(ctx) // starts a trial for new users
//	if res := s.CanDownload(ctx); res.Allowed {
//	    // deliver the file, then count it
//	    err = s.Usage().RecordDownload(ctx, productID)
//	} else {
//	    fmt.Println(res.Reason)
//	}
//
// Checks never write. Recording a download or a product access is a separate
// call made once the action actually happened.
//
// # Limits
//
// Trials are capped at 3 downloads per calendar day and at the trial plan's
// product ceiling (10 distinct products by default). Any plan may cap total
// downloads. Calendar days are counted in the engine's location, UTC unless
// set with WithLocation.
//
// # Storage
//
// Records are stored as JSON documents under per-user keys
// (user_subscription:<id>, user_usage:<id>, trial_start_date:<id>), so any
// key/value backend implementing store.Store can hold them.
package digigate
