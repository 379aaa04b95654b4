package implementation

import (
	"context"
	"errors"
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/repository/contract"
	"documind-be/internal/repository/specification"
	"documind-be/internal/repository/unitofwork"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// SessionRepositoryImpl is the Postgres driver for the session aggregate.
// Multi-statement operations run inside a unit of work; the optimistic
// append is anchored on the sessions.turn_count CAS with the unique
// (session_id, position) index as a second net.
type SessionRepositoryImpl struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:         db,
		uowFactory: unitofwork.NewRepositoryFactory(db),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *SessionRepositoryImpl) Get(ctx context.Context, sessionId string) (*entity.Session, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRecordRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil || session == nil {
		return nil, err
	}

	turns, err := uow.ChatTurnRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "position"},
	)
	if err != nil {
		return nil, err
	}
	for _, t := range turns {
		session.Turns = append(session.Turns, *t)
	}
	return session, nil
}

func (r *SessionRepositoryImpl) SetDocument(ctx context.Context, sessionId, documentName, text string) (*entity.Session, error) {
	err := r.setDocumentOnce(ctx, sessionId, documentName, text)
	if isUniqueViolation(err) {
		// Lost a create race with a concurrent first upload. The row exists
		// now, so the replace path applies.
		err = r.setDocumentOnce(ctx, sessionId, documentName, text)
	}
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, sessionId)
}

func (r *SessionRepositoryImpl) setDocumentOnce(ctx context.Context, sessionId, documentName, text string) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	err := uow.SessionRecordRepository().ReplaceDocument(ctx, sessionId, documentName, text)
	if errors.Is(err, contract.ErrNotFound) {
		created := &entity.Session{
			Id:            sessionId,
			DocumentName:  documentName,
			DocumentText:  text,
			DocGeneration: 1,
			CreatedAt:     time.Now(),
		}
		err = uow.SessionRecordRepository().Create(ctx, created)
	}
	if err != nil {
		return err
	}

	if err := uow.ChatTurnRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	return uow.Commit()
}

func (r *SessionRepositoryImpl) SetSummary(ctx context.Context, sessionId, summary string) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRecordRepository().UpdateSummary(ctx, sessionId, summary)
}

func (r *SessionRepositoryImpl) SetTitle(ctx context.Context, sessionId, title string) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRecordRepository().UpdateTitle(ctx, sessionId, title)
}

func (r *SessionRepositoryImpl) AppendTurn(ctx context.Context, sessionId string, docGeneration int64, expectedPriorLen int, turn *entity.ChatTurn) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SessionRecordRepository().BumpTurnCount(ctx, sessionId, docGeneration, expectedPriorLen); err != nil {
		return err
	}

	turn.SessionId = sessionId
	turn.Position = expectedPriorLen
	if err := uow.ChatTurnRepository().Create(ctx, turn); err != nil {
		if isUniqueViolation(err) {
			return contract.ErrConflict
		}
		return err
	}
	return uow.Commit()
}

func (r *SessionRepositoryImpl) Clear(ctx context.Context, sessionId string) error {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatTurnRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.SessionRecordRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	return uow.Commit()
}

func (r *SessionRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]*entity.Session, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.SessionRecordRepository().FindAll(ctx,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
}

func (r *SessionRepositoryImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
