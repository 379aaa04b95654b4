package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/repository/contract"

	"github.com/google/uuid"
)

func newTurn(question, answer string) *entity.ChatTurn {
	return &entity.ChatTurn{
		Id:        uuid.New(),
		Question:  question,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
}

func TestSetDocumentCreatesSession(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	created, err := store.SetDocument(ctx, "s1", "guide.txt", "Bees dance to share directions.")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if created.DocGeneration != 1 {
		t.Errorf("DocGeneration = %d, want 1", created.DocGeneration)
	}
	if created.DocumentName != "guide.txt" {
		t.Errorf("DocumentName = %q, want %q", created.DocumentName, "guide.txt")
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an existing session")
	}
	if got.DocumentText != "Bees dance to share directions." {
		t.Errorf("DocumentText = %q", got.DocumentText)
	}
	if !got.HasDocument() {
		t.Error("HasDocument() = false after upload")
	}
}

func TestGetUnknownSessionReturnsNil(t *testing.T) {
	store := NewSessionRepository(0)

	got, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %+v, want nil", got)
	}
}

func TestReuploadResetsConversation(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	first, err := store.SetDocument(ctx, "s1", "v1.txt", "first document body")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if err := store.AppendTurn(ctx, "s1", first.DocGeneration, 0, newTurn("q", "a")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if err := store.SetSummary(ctx, "s1", "old summary"); err != nil {
		t.Fatalf("SetSummary: %v", err)
	}
	if err := store.SetTitle(ctx, "s1", "old title"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}

	second, err := store.SetDocument(ctx, "s1", "v2.txt", "second document body")
	if err != nil {
		t.Fatalf("SetDocument (replace): %v", err)
	}
	if second.DocGeneration != 2 {
		t.Errorf("DocGeneration = %d, want 2", second.DocGeneration)
	}
	if len(second.Turns) != 0 || second.TurnCount != 0 {
		t.Errorf("history survived re-upload: turns=%d count=%d", len(second.Turns), second.TurnCount)
	}
	if second.Summary != "" || second.Title != "" {
		t.Errorf("summary/title survived re-upload: %q / %q", second.Summary, second.Title)
	}
	if second.DocumentName != "v2.txt" {
		t.Errorf("DocumentName = %q, want %q", second.DocumentName, "v2.txt")
	}
}

func TestAppendTurnStampsPositions(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	session, err := store.SetDocument(ctx, "s1", "doc.txt", "body")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}

	if err := store.AppendTurn(ctx, "s1", session.DocGeneration, 0, newTurn("first?", "one")); err != nil {
		t.Fatalf("AppendTurn #1: %v", err)
	}
	if err := store.AppendTurn(ctx, "s1", session.DocGeneration, 1, newTurn("second?", "two")); err != nil {
		t.Fatalf("AppendTurn #2: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Turns) != 2 || got.TurnCount != 2 {
		t.Fatalf("turns=%d count=%d, want 2/2", len(got.Turns), got.TurnCount)
	}
	for i, turn := range got.Turns {
		if turn.Position != i {
			t.Errorf("Turns[%d].Position = %d, want %d", i, turn.Position, i)
		}
		if turn.SessionId != "s1" {
			t.Errorf("Turns[%d].SessionId = %q", i, turn.SessionId)
		}
	}
	if got.Turns[0].Question != "first?" || got.Turns[1].Question != "second?" {
		t.Errorf("replay order broken: %q, %q", got.Turns[0].Question, got.Turns[1].Question)
	}
}

func TestAppendTurnRejectsStaleWriters(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	session, err := store.SetDocument(ctx, "s1", "doc.txt", "body")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if err := store.AppendTurn(ctx, "s1", session.DocGeneration, 0, newTurn("q0", "a0")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	tests := []struct {
		name          string
		sessionId     string
		docGeneration int64
		priorLen      int
		wantErr       error
	}{
		{
			name:          "stale history length",
			sessionId:     "s1",
			docGeneration: session.DocGeneration,
			priorLen:      0,
			wantErr:       contract.ErrConflict,
		},
		{
			name:          "stale document generation",
			sessionId:     "s1",
			docGeneration: session.DocGeneration - 1,
			priorLen:      1,
			wantErr:       contract.ErrConflict,
		},
		{
			name:          "unknown session",
			sessionId:     "nope",
			docGeneration: 1,
			priorLen:      0,
			wantErr:       contract.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AppendTurn(ctx, tt.sessionId, tt.docGeneration, tt.priorLen, newTurn("q", "a"))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AppendTurn = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, _ := store.Get(ctx, "s1")
	if len(got.Turns) != 1 {
		t.Errorf("rejected appends mutated history: %d turns", len(got.Turns))
	}
}

func TestUpdatesOnUnknownSession(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	if err := store.SetSummary(ctx, "missing", "s"); !errors.Is(err, contract.ErrNotFound) {
		t.Errorf("SetSummary = %v, want ErrNotFound", err)
	}
	if err := store.SetTitle(ctx, "missing", "t"); !errors.Is(err, contract.ErrNotFound) {
		t.Errorf("SetTitle = %v, want ErrNotFound", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	if _, err := store.SetDocument(ctx, "s1", "doc.txt", "body"); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear (second): %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("session survived Clear: %+v", got)
	}
}

func TestListRecentOrdersByActivity(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	older, err := store.SetDocument(ctx, "older", "a.txt", "body a")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := store.SetDocument(ctx, "newer", "b.txt", "body b"); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	// Asking a question touches the older session, moving it back to the top.
	if err := store.AppendTurn(ctx, "older", older.DocGeneration, 0, newTurn("q", "a")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	sessions, err := store.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("len = %d, want 2", len(sessions))
	}
	if sessions[0].Id != "older" || sessions[1].Id != "newer" {
		t.Errorf("order = [%s, %s], want [older, newer]", sessions[0].Id, sessions[1].Id)
	}
	if sessions[0].Turns != nil {
		t.Error("listing loaded full turn bodies")
	}
	if sessions[0].TurnCount != 1 {
		t.Errorf("TurnCount = %d, want 1", sessions[0].TurnCount)
	}

	limited, err := store.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent(1): %v", err)
	}
	if len(limited) != 1 || limited[0].Id != "older" {
		t.Errorf("limit not honored: %+v", limited)
	}
}

func TestReturnedSessionsAreDetached(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	session, err := store.SetDocument(ctx, "s1", "doc.txt", "body")
	if err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	if err := store.AppendTurn(ctx, "s1", session.DocGeneration, 0, newTurn("q", "a")); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	first, _ := store.Get(ctx, "s1")
	first.DocumentText = "tampered"
	first.Turns[0].Answer = "tampered"

	second, _ := store.Get(ctx, "s1")
	if second.DocumentText != "body" {
		t.Errorf("store shared DocumentText with caller: %q", second.DocumentText)
	}
	if second.Turns[0].Answer != "a" {
		t.Errorf("store shared turn slice with caller: %q", second.Turns[0].Answer)
	}
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(20 * time.Millisecond)

	if _, err := store.SetDocument(ctx, "s1", "doc.txt", "body"); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("session outlived its TTL: %+v", got)
	}
}

func TestConcurrentAppendsBothLand(t *testing.T) {
	ctx := context.Background()
	store := NewSessionRepository(0)

	if _, err := store.SetDocument(ctx, "s1", "doc.txt", "body"); err != nil {
		t.Fatalf("SetDocument: %v", err)
	}

	// Callers retry the whole read-then-append cycle on conflict, the same
	// loop a host runs around the ask operation.
	appendWithRetry := func(question string) error {
		for attempt := 0; attempt < 10; attempt++ {
			session, err := store.Get(ctx, "s1")
			if err != nil {
				return err
			}
			err = store.AppendTurn(ctx, "s1", session.DocGeneration, len(session.Turns), newTurn(question, "answer"))
			if !errors.Is(err, contract.ErrConflict) {
				return err
			}
		}
		return contract.ErrConflict
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, q := range []string{"first?", "second?"} {
		wg.Add(1)
		go func(question string) {
			defer wg.Done()
			errs <- appendWithRetry(question)
		}(q)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("appendWithRetry: %v", err)
		}
	}

	got, _ := store.Get(ctx, "s1")
	if len(got.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(got.Turns))
	}
	if got.Turns[0].Position != 0 || got.Turns[1].Position != 1 {
		t.Errorf("positions = %d,%d, want 0,1", got.Turns[0].Position, got.Turns[1].Position)
	}
}
