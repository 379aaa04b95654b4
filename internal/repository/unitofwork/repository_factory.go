package unitofwork

import "context"

// RepositoryFactory hands the session store a fresh UnitOfWork for every
// operation. Reads use it without Begin and run on the shared handle;
// writes that must land together, like the turn count bump and the turn
// insert, open a transaction first.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
