package domain

// Status is the lifecycle state shared by Charge and UserTransaction
type Status string

const (
	StatusWaiting   Status = "WAITING"   // Created, awaiting settlement
	StatusConfirmed Status = "CONFIRMED" // Settled, balance effect applied
	StatusFailed    Status = "FAILED"    // Rejected, no balance effect
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusConfirmed, StatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether s can no longer change
func (s Status) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// CanTransition reports whether an entity currently in s may move to next.
// Only WAITING has outgoing edges, and both of them are terminal.
func (s Status) CanTransition(next Status) bool {
	return s == StatusWaiting && next.IsTerminal()
}

// Description explains why a UserTransaction ended up FAILED
type Description string

const (
	DescriptionInsufficientBalance Description = "INSUFFICIENT_BALANCE" // Seller could not cover the amount
	DescriptionOtherReasons        Description = "OTHER_REASONS"        // Any other settlement failure
)
