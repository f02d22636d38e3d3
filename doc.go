// Package credits provides a usage credit and entitlement engine for Go applications.
//
// Credits is designed as a library, not a service. Import it directly into
// your Go application to gate a metered action behind a tier-based credit
// quota. It provides:
//
//   - Atomic consume-or-deny decisions over a session credit balance
//   - Tier-based allowances with purchasable bonus credits on top
//   - Threshold warnings (low credit, out of credits, limit reached)
//   - Best-effort asynchronous persistence over pluggable stores
//   - A plugin hook registry for notifications, analytics, and metrics
//
// # Quick Start
//
// Create an engine instance with your preferred store:
//
//	import (
//	    "github.com/clipforge/credits"
//	    "github.com/clipforge/credits/store/memory"
//	)
//
//	engine := credits.New(memory.New())
//
//	// Start the engine (rehydrates state, begins background persistence)
//	if err := engine.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
// # Core Concepts
//
// Tiers define the base allowance per usage period:
//
//	tier.Free    // 1 credit
//	tier.Creator // 15 credits
//	tier.Agency  // 100 credits
//
// Every gated action asks the engine for one unit:
//
//	result := engine.TryConsume(ctx)
//	if !result.Allowed {
//	    // Surface the paywall; the action must not run.
//	    return
//	}
//	// Proceed; result.Warning may carry a threshold signal to display.
//
// A deny is a normal value, never an error. Errors are reserved for
// invalid input (unknown tiers, non-positive bonus amounts) and for
// store corruption discovered at startup.
//
// Bonus credits extend the limit without touching usage:
//
//	engine.AddBonus(ctx, 5) // after payment confirmation
//
// Tier changes follow subscription semantics: upgrading out of FREE
// resets usage for the new paid period, every other transition carries
// the counters, and bonus credits always survive:
//
//	engine.ChangeTier(ctx, tier.Agency)
//
// # Durability
//
// The in-memory session state is authoritative. Counters are persisted
// asynchronously as absolute snapshots; an unreachable store degrades
// durability but never blocks or fails a quota decision.
//
// All monetary amounts (tier prices, credit pack prices) use integer
// arithmetic via the Money type, which represents amounts in the
// smallest currency unit.
//
// # TypeID
//
// Sessions and recorded events use TypeID for globally unique,
// type-safe identifiers:
//
//	sess_01h2xcejqtf2nbrexx3vqjhp41 // Session ID
//	evt_01h455vb4pex5vsknk084sn02q  // Event ID
//
// TypeIDs are K-sortable, providing natural time-ordering of entities.
package credits
