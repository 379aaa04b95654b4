package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps session aggregates in process memory. Suited to
// tests and single-node development; state does not survive a restart.
// go-cache handles expiry; the outer mutex serializes read-modify-write so
// the optimistic append check is race-free.
type SessionRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) contract.SessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

// clone deep-copies an aggregate so callers never share memory with the
// stored value.
func clone(s *entity.Session) *entity.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		out.UpdatedAt = &t
	}
	out.Turns = make([]entity.ChatTurn, len(s.Turns))
	copy(out.Turns, s.Turns)
	return &out
}

func (r *SessionRepository) get(sessionId string) *entity.Session {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*entity.Session)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.get(sessionId)), nil
}

func (r *SessionRepository) SetDocument(ctx context.Context, sessionId, documentName, text string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	s := r.get(sessionId)
	if s == nil {
		s = &entity.Session{
			Id:        sessionId,
			CreatedAt: now,
		}
	} else {
		s = clone(s)
	}
	s.DocumentName = documentName
	s.DocumentText = text
	s.Summary = ""
	s.Title = ""
	s.Turns = nil
	s.TurnCount = 0
	s.DocGeneration++
	s.UpdatedAt = &now

	r.cache.Set(sessionId, s, cache.DefaultExpiration)
	return clone(s), nil
}

func (r *SessionRepository) SetSummary(ctx context.Context, sessionId, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(sessionId)
	if s == nil {
		return contract.ErrNotFound
	}
	s = clone(s)
	now := time.Now()
	s.Summary = summary
	s.UpdatedAt = &now
	r.cache.Set(sessionId, s, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) SetTitle(ctx context.Context, sessionId, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(sessionId)
	if s == nil {
		return contract.ErrNotFound
	}
	s = clone(s)
	now := time.Now()
	s.Title = title
	s.UpdatedAt = &now
	r.cache.Set(sessionId, s, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) AppendTurn(ctx context.Context, sessionId string, docGeneration int64, expectedPriorLen int, turn *entity.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.get(sessionId)
	if s == nil {
		return contract.ErrNotFound
	}
	if s.DocGeneration != docGeneration || len(s.Turns) != expectedPriorLen {
		return contract.ErrConflict
	}

	s = clone(s)
	now := time.Now()
	turn.SessionId = sessionId
	turn.Position = expectedPriorLen
	s.Turns = append(s.Turns, *turn)
	s.TurnCount = len(s.Turns)
	s.UpdatedAt = &now
	r.cache.Set(sessionId, s, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context, sessionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(sessionId)
	return nil
}

func (r *SessionRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*entity.Session
	for _, item := range r.cache.Items() {
		s, ok := item.Object.(*entity.Session)
		if !ok {
			continue
		}
		c := clone(s)
		c.Turns = nil
		sessions = append(sessions, c)
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
	return nil
}
