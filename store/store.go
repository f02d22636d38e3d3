// Package store defines the persistence contract for Credits.
//
// The engine persists exactly two keys, both holding base-10 integer
// strings. The store must survive process restart within the same
// deployment; it does not need to be shared across devices. All writes
// are best-effort from the engine's perspective: the in-memory state
// stays authoritative when a store is unavailable.
package store

import "context"

// Keys used by the engine. Values are base-10 integer strings.
const (
	// KeyCreditsUsed holds the consumption units spent this period.
	KeyCreditsUsed = "CREDITS_USED"

	// KeyExtraCredits holds the purchased bonus credit balance.
	KeyExtraCredits = "EXTRA_CREDITS"
)

// Store is the key-value persistence interface for Credits.
type Store interface {
	// Get returns the value for key, or credits.ErrKeyNotFound when
	// the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// Migrate prepares the backing schema. Safe to call repeatedly.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
