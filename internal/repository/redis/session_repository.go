package redis

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "documind:session:"
	defaultTTL       = 24 * time.Hour

	// Bounded retries for writes that should win over concurrent mutations
	// (document replacement, summary, title). The append never retries; a
	// WATCH failure there IS the conflict the caller must see.
	maxTxRetries = 5
)

// SessionRepository stores each aggregate as one JSON blob and relies on
// WATCH/MULTI/EXEC for the optimistic append.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) contract.SessionRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

type sessionBlob struct {
	Id            string     `json:"id"`
	DocumentName  string     `json:"document_name"`
	DocumentText  string     `json:"document_text"`
	Summary       string     `json:"summary"`
	Title         string     `json:"title"`
	DocGeneration int64      `json:"doc_generation"`
	Turns         []turnBlob `json:"turns"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type turnBlob struct {
	Id            uuid.UUID `json:"id"`
	Position      int       `json:"position"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Justification string    `json:"justification"`
	CreatedAt     time.Time `json:"created_at"`
}

func toBlob(s *entity.Session) *sessionBlob {
	b := &sessionBlob{
		Id:            s.Id,
		DocumentName:  s.DocumentName,
		DocumentText:  s.DocumentText,
		Summary:       s.Summary,
		Title:         s.Title,
		DocGeneration: s.DocGeneration,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	for _, t := range s.Turns {
		b.Turns = append(b.Turns, turnBlob{
			Id:            t.Id,
			Position:      t.Position,
			Question:      t.Question,
			Answer:        t.Answer,
			Justification: t.Justification,
			CreatedAt:     t.CreatedAt,
		})
	}
	return b
}

func (b *sessionBlob) toEntity() *entity.Session {
	s := &entity.Session{
		Id:            b.Id,
		DocumentName:  b.DocumentName,
		DocumentText:  b.DocumentText,
		Summary:       b.Summary,
		Title:         b.Title,
		DocGeneration: b.DocGeneration,
		TurnCount:     len(b.Turns),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	for _, t := range b.Turns {
		s.Turns = append(s.Turns, entity.ChatTurn{
			Id:            t.Id,
			SessionId:     b.Id,
			Position:      t.Position,
			Question:      t.Question,
			Answer:        t.Answer,
			Justification: t.Justification,
			CreatedAt:     t.CreatedAt,
		})
	}
	return s
}

func (r *SessionRepository) key(sessionId string) string {
	return sessionKeyPrefix + sessionId
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*entity.Session, error) {
	val, err := r.client.Get(ctx, r.key(sessionId)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var blob sessionBlob
	if err := json.Unmarshal([]byte(val), &blob); err != nil {
		return nil, err
	}

	// Refresh TTL on read; a failed refresh never fails the read.
	_ = r.client.Expire(ctx, r.key(sessionId), r.ttl).Err()

	return blob.toEntity(), nil
}

func (r *SessionRepository) SetDocument(ctx context.Context, sessionId, documentName, text string) (*entity.Session, error) {
	key := r.key(sessionId)
	var stored *entity.Session

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			now := time.Now()
			s := &entity.Session{
				Id:            sessionId,
				DocumentName:  documentName,
				DocumentText:  text,
				DocGeneration: 1,
				CreatedAt:     now,
				UpdatedAt:     &now,
			}

			val, err := tx.Get(ctx, key).Result()
			if err != nil && err != redis.Nil {
				return err
			}
			if err == nil {
				var prev sessionBlob
				if err := json.Unmarshal([]byte(val), &prev); err != nil {
					return err
				}
				s.DocGeneration = prev.DocGeneration + 1
				s.CreatedAt = prev.CreatedAt
			}

			newVal, err := json.Marshal(toBlob(s))
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, newVal, r.ttl)
				return nil
			})
			if err == nil {
				stored = s
			}
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue // lost the race, re-read and replace again
		}
		if err != nil {
			return nil, err
		}
		return stored, nil
	}
	return nil, contract.ErrConflict
}

func (r *SessionRepository) SetSummary(ctx context.Context, sessionId, summary string) error {
	return r.mutate(ctx, sessionId, func(s *entity.Session) {
		s.Summary = summary
	})
}

func (r *SessionRepository) SetTitle(ctx context.Context, sessionId, title string) error {
	return r.mutate(ctx, sessionId, func(s *entity.Session) {
		s.Title = title
	})
}

// mutate applies a field update under WATCH, retrying when a concurrent
// writer invalidates the read.
func (r *SessionRepository) mutate(ctx context.Context, sessionId string, apply func(*entity.Session)) error {
	key := r.key(sessionId)

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			val, err := tx.Get(ctx, key).Result()
			if err == redis.Nil {
				return contract.ErrNotFound
			}
			if err != nil {
				return err
			}

			var blob sessionBlob
			if err := json.Unmarshal([]byte(val), &blob); err != nil {
				return err
			}
			s := blob.toEntity()
			apply(s)
			now := time.Now()
			s.UpdatedAt = &now

			newVal, err := json.Marshal(toBlob(s))
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, newVal, r.ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return contract.ErrConflict
}

func (r *SessionRepository) AppendTurn(ctx context.Context, sessionId string, docGeneration int64, expectedPriorLen int, turn *entity.ChatTurn) error {
	key := r.key(sessionId)

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return contract.ErrNotFound
		}
		if err != nil {
			return err
		}

		var blob sessionBlob
		if err := json.Unmarshal([]byte(val), &blob); err != nil {
			return err
		}
		if blob.DocGeneration != docGeneration || len(blob.Turns) != expectedPriorLen {
			return contract.ErrConflict
		}

		s := blob.toEntity()
		now := time.Now()
		turn.SessionId = sessionId
		turn.Position = expectedPriorLen
		s.Turns = append(s.Turns, *turn)
		s.UpdatedAt = &now

		newVal, err := json.Marshal(toBlob(s))
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newVal, r.ttl)
			return nil
		})
		return err
	}, key)

	if err == redis.TxFailedErr {
		// Someone mutated the session between read and EXEC; the caller's
		// snapshot is stale either way.
		return contract.ErrConflict
	}
	return err
}

func (r *SessionRepository) Clear(ctx context.Context, sessionId string) error {
	return r.client.Del(ctx, r.key(sessionId)).Err()
}

func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Session, error) {
	var sessions []*entity.Session
	var cursor uint64

	for {
		keys, next, err := r.client.Scan(ctx, cursor, sessionKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			val, err := r.client.Get(ctx, key).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}
			var blob sessionBlob
			if err := json.Unmarshal([]byte(val), &blob); err != nil {
				continue // skip unreadable blobs rather than failing the listing
			}
			s := blob.toEntity()
			s.Turns = nil
			sessions = append(sessions, s)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		return lastTouched(sessions[i]).After(lastTouched(sessions[j]))
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

func lastTouched(s *entity.Session) time.Time {
	if s.UpdatedAt != nil {
		return *s.UpdatedAt
	}
	return s.CreatedAt
}

func (r *SessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
