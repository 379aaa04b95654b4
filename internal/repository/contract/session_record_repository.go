package contract

import (
	"context"

	"documind-be/internal/entity"
	"documind-be/internal/repository/specification"
)

// SessionRecordRepository is the row-level store behind the GORM driver.
// It never touches chat turns; the driver composes both repositories inside
// a unit of work.
type SessionRecordRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)

	// ReplaceDocument swaps the document in place: new name and text, summary
	// and title cleared, doc_generation incremented, turn_count zeroed.
	// ErrNotFound when no row matches.
	ReplaceDocument(ctx context.Context, sessionId, documentName, text string) error

	// UpdateSummary stores the derived summary without touching the
	// document generation. ErrNotFound when no row matches.
	UpdateSummary(ctx context.Context, sessionId, summary string) error

	// UpdateTitle stores the listing title. ErrNotFound when no row matches.
	UpdateTitle(ctx context.Context, sessionId, title string) error

	// BumpTurnCount performs the optimistic append check: it increments
	// turn_count only when the row still carries docGeneration and exactly
	// expectedCount turns. ErrConflict on a stale snapshot, ErrNotFound when
	// the session is gone.
	BumpTurnCount(ctx context.Context, sessionId string, docGeneration int64, expectedCount int) error

	// Delete removes the session row. Missing rows are not an error.
	Delete(ctx context.Context, sessionId string) error
}
