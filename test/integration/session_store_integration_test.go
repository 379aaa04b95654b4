package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"documind-be/internal/entity"
	"documind-be/internal/model"
	"documind-be/internal/repository/contract"
	"documind-be/internal/repository/implementation"
	"documind-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSessionStore(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.Session{}, &model.ChatTurn{}))

	store := implementation.NewSessionRepository(gormDB)
	ctx := context.Background()

	sessionId := "it-" + uuid.New().String()
	defer store.Clear(ctx, sessionId)

	assert.NoError(t, store.Ping(ctx))

	t.Run("Upload and read back", func(t *testing.T) {
		created, err := store.SetDocument(ctx, sessionId, "guide.txt", "Bees dance to share directions.")
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.DocGeneration)

		got, err := store.Get(ctx, sessionId)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "guide.txt", got.DocumentName)
		assert.Equal(t, "Bees dance to share directions.", got.DocumentText)
		assert.Empty(t, got.Turns)
	})

	t.Run("Append turns in order", func(t *testing.T) {
		session, err := store.Get(ctx, sessionId)
		require.NoError(t, err)

		first := &entity.ChatTurn{
			Id:        uuid.New(),
			Question:  "How do bees communicate?",
			Answer:    "Through the waggle dance.",
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.AppendTurn(ctx, sessionId, session.DocGeneration, 0, first))

		second := &entity.ChatTurn{
			Id:        uuid.New(),
			Question:  "What does the angle encode?",
			Answer:    "Direction relative to the sun.",
			CreatedAt: time.Now(),
		}
		require.NoError(t, store.AppendTurn(ctx, sessionId, session.DocGeneration, 1, second))

		got, err := store.Get(ctx, sessionId)
		require.NoError(t, err)
		require.Len(t, got.Turns, 2)
		assert.Equal(t, 0, got.Turns[0].Position)
		assert.Equal(t, 1, got.Turns[1].Position)
		assert.Equal(t, "How do bees communicate?", got.Turns[0].Question)
		assert.Equal(t, 2, got.TurnCount)
	})

	t.Run("Stale append is rejected", func(t *testing.T) {
		session, err := store.Get(ctx, sessionId)
		require.NoError(t, err)

		stale := &entity.ChatTurn{Id: uuid.New(), Question: "q", Answer: "a", CreatedAt: time.Now()}
		err = store.AppendTurn(ctx, sessionId, session.DocGeneration, len(session.Turns)-1, stale)
		assert.ErrorIs(t, err, contract.ErrConflict)

		wrongGen := &entity.ChatTurn{Id: uuid.New(), Question: "q", Answer: "a", CreatedAt: time.Now()}
		err = store.AppendTurn(ctx, sessionId, session.DocGeneration+1, len(session.Turns), wrongGen)
		assert.ErrorIs(t, err, contract.ErrConflict)

		got, err := store.Get(ctx, sessionId)
		require.NoError(t, err)
		assert.Len(t, got.Turns, 2, "rejected appends must not persist")
	})

	t.Run("Summary and title updates", func(t *testing.T) {
		require.NoError(t, store.SetSummary(ctx, sessionId, "Bees communicate via dance."))
		require.NoError(t, store.SetTitle(ctx, sessionId, "How do bees communicate?"))

		got, err := store.Get(ctx, sessionId)
		require.NoError(t, err)
		assert.Equal(t, "Bees communicate via dance.", got.Summary)
		assert.Equal(t, "How do bees communicate?", got.Title)

		err = store.SetSummary(ctx, "it-missing-"+uuid.New().String(), "orphan")
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})

	t.Run("Replacing the document resets the conversation", func(t *testing.T) {
		replaced, err := store.SetDocument(ctx, sessionId, "v2.txt", "Second edition.")
		require.NoError(t, err)
		assert.Equal(t, int64(2), replaced.DocGeneration)
		assert.Empty(t, replaced.Turns)
		assert.Equal(t, 0, replaced.TurnCount)

		// Appends against the old generation are now stale.
		old := &entity.ChatTurn{Id: uuid.New(), Question: "q", Answer: "a", CreatedAt: time.Now()}
		err = store.AppendTurn(ctx, sessionId, 1, 0, old)
		assert.ErrorIs(t, err, contract.ErrConflict)
	})

	t.Run("Recent listing carries projections", func(t *testing.T) {
		sessions, err := store.ListRecent(ctx, 50)
		require.NoError(t, err)

		var found *entity.Session
		for _, s := range sessions {
			if s.Id == sessionId {
				found = s
				break
			}
		}
		require.NotNil(t, found, "session missing from recent listing")
		assert.Equal(t, "v2.txt", found.DocumentName)
		assert.Empty(t, found.Turns, "listing should not load turn bodies")
	})

	t.Run("Clear removes everything", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx, sessionId))

		got, err := store.Get(ctx, sessionId)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Clearing again is a no-op.
		assert.NoError(t, store.Clear(ctx, sessionId))
	})
}

func TestPostgresConcurrentAppends(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.Session{}, &model.ChatTurn{}))

	store := implementation.NewSessionRepository(gormDB)
	ctx := context.Background()

	sessionId := "it-race-" + uuid.New().String()
	defer store.Clear(ctx, sessionId)

	_, err = store.SetDocument(ctx, sessionId, "doc.txt", "body")
	require.NoError(t, err)

	appendWithRetry := func(question string) error {
		for attempt := 0; attempt < 10; attempt++ {
			session, err := store.Get(ctx, sessionId)
			if err != nil {
				return err
			}
			turn := &entity.ChatTurn{
				Id:        uuid.New(),
				Question:  question,
				Answer:    "answer",
				CreatedAt: time.Now(),
			}
			err = store.AppendTurn(ctx, sessionId, session.DocGeneration, len(session.Turns), turn)
			if err == nil {
				return nil
			}
			if !errors.Is(err, contract.ErrConflict) {
				return err
			}
		}
		return contract.ErrConflict
	}

	done := make(chan error, 2)
	go func() { done <- appendWithRetry("first?") }()
	go func() { done <- appendWithRetry("second?") }()
	assert.NoError(t, <-done)
	assert.NoError(t, <-done)

	got, err := store.Get(ctx, sessionId)
	require.NoError(t, err)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, 0, got.Turns[0].Position)
	assert.Equal(t, 1, got.Turns[1].Position)
}
