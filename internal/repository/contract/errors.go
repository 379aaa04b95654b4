package contract

import "errors"

var (
	// ErrConflict is returned by AppendTurn when the session changed between
	// the caller's read and the append: the history length no longer matches
	// expectedPriorLen, or the document was replaced (generation mismatch).
	ErrConflict = errors.New("session modified concurrently")

	// ErrNotFound is returned by mutating operations that require an
	// existing session. Read operations return (nil, nil) instead.
	ErrNotFound = errors.New("session not found")
)
