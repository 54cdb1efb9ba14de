package domain

// passesToClear ends a trick in a four-player game: once the other three
// seats decline in a row, the leader owes nothing.
const passesToClear = 3

// ResolvePass applies one pass to the running pass count. When the count
// reaches three the trick clears and the count restarts at zero within the
// same transition, so a stored count never leaves 0..2.
func ResolvePass(passCount int32) (newCount int32, cleared bool) {
	if passCount+1 >= passesToClear {
		return 0, true
	}
	return passCount + 1, false
}
