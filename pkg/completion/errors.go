package completion

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindUpstream covers 5xx replies, 429 rate limits and transport
	// failures. Never retried here; blind retries amplify rate-limit storms.
	KindUpstream Kind = "upstream"

	// KindAuth covers 401/403. Terminal until an operator fixes credentials.
	KindAuth Kind = "auth"

	// KindMalformed means the reply did not decode into the expected shape,
	// even after the single corrective retry.
	KindMalformed Kind = "malformed"
)

// Error is the gateway's typed failure: a kind for dispatch plus the
// operator-facing detail (status, raw payload snippet).
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("completion %s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("completion %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func isKind(err error, kind Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == kind
}

func IsUpstream(err error) bool  { return isKind(err, KindUpstream) }
func IsAuth(err error) bool      { return isKind(err, KindAuth) }
func IsMalformed(err error) bool { return isKind(err, KindMalformed) }
