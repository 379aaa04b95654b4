package unitofwork

import (
	"context"

	"documind-be/internal/repository/contract"
)

// UnitOfWork scopes repository access to one store operation. Before Begin
// the repositories it builds run on the shared handle; after it they share
// a single transaction ended by Commit or Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRecordRepository() contract.SessionRecordRepository
	ChatTurnRepository() contract.ChatTurnRepository
}
