package mapper

import (
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// SessionToEntity assembles the aggregate from the session row and its
// ordered turn rows. Turns may be nil for listing queries.
func (m *SessionMapper) SessionToEntity(s *model.Session, turns []*model.ChatTurn) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	out := &entity.Session{
		Id:            s.Id,
		DocumentName:  s.DocumentName,
		DocumentText:  s.DocumentText,
		Summary:       s.Summary,
		Title:         s.Title,
		DocGeneration: s.DocGeneration,
		TurnCount:     s.TurnCount,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
	for _, t := range turns {
		out.Turns = append(out.Turns, *m.TurnToEntity(t))
	}
	return out
}

func (m *SessionMapper) TurnToEntity(t *model.ChatTurn) *entity.ChatTurn {
	if t == nil {
		return nil
	}
	return &entity.ChatTurn{
		Id:            t.Id,
		SessionId:     t.SessionId,
		Position:      t.Position,
		Question:      t.Question,
		Answer:        t.Answer,
		Justification: t.Justification,
		CreatedAt:     t.CreatedAt,
	}
}

func (m *SessionMapper) TurnToModel(t *entity.ChatTurn) *model.ChatTurn {
	if t == nil {
		return nil
	}
	return &model.ChatTurn{
		Id:            t.Id,
		SessionId:     t.SessionId,
		Position:      t.Position,
		Question:      t.Question,
		Answer:        t.Answer,
		Justification: t.Justification,
		CreatedAt:     t.CreatedAt,
	}
}
