package recorder

// Event names for recorded analytics events.
const (
	EventCreditConsumed   = "credit_consumed"
	EventLimitReached     = "limit_reached"
	EventCreditWarning    = "credit_warning"
	EventCreditsPurchased = "credits_purchased"
	EventTierChanged      = "tier_changed"
	EventSessionReset     = "session_reset"
	EventSessionRestored  = "session_restored"
	EventPersistFailed    = "persist_failed"
)

// allEvents returns all known event names.
func allEvents() []string {
	return []string{
		EventCreditConsumed,
		EventLimitReached,
		EventCreditWarning,
		EventCreditsPurchased,
		EventTierChanged,
		EventSessionReset,
		EventSessionRestored,
		EventPersistFailed,
	}
}
