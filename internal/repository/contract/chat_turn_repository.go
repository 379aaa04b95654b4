package contract

import (
	"context"

	"documind-be/internal/entity"
	"documind-be/internal/repository/specification"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	CountBySessionId(ctx context.Context, sessionId string) (int64, error)
	DeleteBySessionId(ctx context.Context, sessionId string) error
}
