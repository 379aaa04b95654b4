package implementation

import (
	"context"
	"errors"

	"documind-be/internal/entity"
	"documind-be/internal/mapper"
	"documind-be/internal/model"
	"documind-be/internal/repository/contract"
	"documind-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SessionRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewSessionRecordRepository(db *gorm.DB) contract.SessionRecordRepository {
	return &SessionRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *SessionRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SessionRecordRepositoryImpl) Create(ctx context.Context, session *entity.Session) error {
	m := &model.Session{
		Id:            session.Id,
		DocumentName:  session.DocumentName,
		DocumentText:  session.DocumentText,
		Summary:       session.Summary,
		Title:         session.Title,
		DocGeneration: session.DocGeneration,
		TurnCount:     len(session.Turns),
		CreatedAt:     session.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m, nil)
	return nil
}

func (r *SessionRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m, nil), nil
}

func (r *SessionRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Session, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m, nil)
	}
	return entities, nil
}

func (r *SessionRecordRepositoryImpl) ReplaceDocument(ctx context.Context, sessionId, documentName, text string) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionId).
		Updates(map[string]interface{}{
			"document_name":  documentName,
			"document_text":  text,
			"summary":        "",
			"title":          "",
			"doc_generation": gorm.Expr("doc_generation + 1"),
			"turn_count":     0,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (r *SessionRecordRepositoryImpl) UpdateSummary(ctx context.Context, sessionId, summary string) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionId).
		Update("summary", summary)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

func (r *SessionRecordRepositoryImpl) UpdateTitle(ctx context.Context, sessionId, title string) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", sessionId).
		Update("title", title)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrNotFound
	}
	return nil
}

// BumpTurnCount is the serialization point for appends. Under READ COMMITTED
// a racing update blocks on the row lock and re-evaluates the WHERE clause
// after the winner commits, so the loser always sees zero rows affected.
func (r *SessionRecordRepositoryImpl) BumpTurnCount(ctx context.Context, sessionId string, docGeneration int64, expectedCount int) error {
	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND doc_generation = ? AND turn_count = ?", sessionId, docGeneration, expectedCount).
		Update("turn_count", expectedCount+1)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindOne(ctx, specification.ByID{ID: sessionId})
		if err != nil {
			return err
		}
		if existing == nil {
			return contract.ErrNotFound
		}
		return contract.ErrConflict
	}
	return nil
}

func (r *SessionRecordRepositoryImpl) Delete(ctx context.Context, sessionId string) error {
	return r.db.WithContext(ctx).Where("id = ?", sessionId).Delete(&model.Session{}).Error
}
