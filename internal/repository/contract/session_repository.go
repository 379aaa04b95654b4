package contract

import (
	"context"

	"documind-be/internal/entity"
)

// SessionRepository stores the per-session aggregate: document, summary and
// ordered chat history. Implementations must keep the invariants below so
// the conversation layer can rely on them regardless of driver:
//
//   - SetDocument replaces the document, clears summary and history and bumps
//     DocGeneration in one atomic step. Readers see the old state or the new
//     one, never a mix.
//   - AppendTurn is an optimistic append: it succeeds only when the session
//     still has the given document generation AND exactly expectedPriorLen
//     turns. Anything else is ErrConflict. Two racing appends from the same
//     snapshot therefore produce one success and one conflict, never a lost
//     update.
type SessionRepository interface {
	// Get returns the full aggregate, turns ordered by position.
	// Unknown session returns (nil, nil).
	Get(ctx context.Context, sessionId string) (*entity.Session, error)

	// SetDocument creates the session if needed, otherwise replaces its
	// document wholesale. Returns the stored aggregate.
	SetDocument(ctx context.Context, sessionId, documentName, text string) (*entity.Session, error)

	// SetSummary caches the derived summary. It does not bump the document
	// generation; a concurrent ask keyed to the same document stays valid.
	SetSummary(ctx context.Context, sessionId, summary string) error

	// SetTitle stores the display title shown in session listings.
	SetTitle(ctx context.Context, sessionId, title string) error

	// AppendTurn appends one turn at position expectedPriorLen.
	AppendTurn(ctx context.Context, sessionId string, docGeneration int64, expectedPriorLen int, turn *entity.ChatTurn) error

	// Clear removes document, summary and history. Idempotent.
	Clear(ctx context.Context, sessionId string) error

	// ListRecent returns up to limit sessions ordered by last update,
	// newest first, without their turns.
	ListRecent(ctx context.Context, limit int) ([]*entity.Session, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
