package ports

import "time"

// Clock is the sole source of authoritative time for disconnect timestamps
// and forced-pass deadlines, so client clock skew never reaches stored
// state.
type Clock interface {
	// Now returns the current authoritative instant.
	Now() time.Time
}
