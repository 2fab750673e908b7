package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/omriShneor/alfred_line/internal/database"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *observer.ObservedLogs) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	return NewStore(&database.DB{DB: sqlDB}, zap.New(core)), mock, logs
}

func TestStore_RecentIsChronological(t *testing.T) {
	store := NewStore(database.NewTestDB(t), nil)
	ctx := context.Background()
	base := time.Date(2025, 12, 16, 10, 0, 0, 0, time.UTC)

	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 30; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		store.Append(ctx, "C1", role, fmt.Sprintf("m%02d", i))
	}

	turns := store.Recent(ctx, "C1", DefaultLimit)
	require.Len(t, turns, DefaultLimit)
	assert.Equal(t, "m10", turns[0].Content)
	assert.Equal(t, "m29", turns[len(turns)-1].Content)
	for i := 1; i < len(turns); i++ {
		assert.True(t, turns[i-1].CreatedAt.Before(turns[i].CreatedAt), "turn %d out of order", i)
	}
	assert.Equal(t, RoleAssistant, turns[len(turns)-1].Role)
}

func TestStore_RecentFewerThanLimit(t *testing.T) {
	store := NewStore(database.NewTestDB(t), nil)
	ctx := context.Background()

	store.Append(ctx, "C1", RoleUser, "こんにちは")
	store.Append(ctx, "C1", RoleAssistant, "こんにちは！")

	turns := store.Recent(ctx, "C1", DefaultLimit)
	require.Len(t, turns, 2)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, RoleAssistant, turns[1].Role)

	assert.Empty(t, store.Recent(ctx, "unknown", DefaultLimit))
	assert.Empty(t, store.Recent(ctx, "C1", 0))
}

func TestStore_RecentReversesStoreOrder(t *testing.T) {
	store, mock, _ := newMockStore(t)
	t1 := time.Date(2025, 12, 16, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "conversation_id", "role", "content", "created_at"}).
		AddRow(3, "C1", "assistant", "third", t1.Add(2*time.Minute)).
		AddRow(2, "C1", "user", "second", t1.Add(time.Minute)).
		AddRow(1, "C1", "user", "first", t1)
	mock.ExpectQuery("FROM conversation_turns").
		WithArgs("C1", 3).
		WillReturnRows(rows)

	turns := store.Recent(context.Background(), "C1", 3)

	require.Len(t, turns, 3)
	assert.Equal(t, "first", turns[0].Content)
	assert.Equal(t, "second", turns[1].Content)
	assert.Equal(t, "third", turns[2].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecentSwallowsStorageFailure(t *testing.T) {
	store, mock, logs := newMockStore(t)
	mock.ExpectQuery("FROM conversation_turns").
		WillReturnError(errors.New("database is locked"))

	turns := store.Recent(context.Background(), "C1", DefaultLimit)

	assert.Empty(t, turns)
	assert.Equal(t, 1, logs.FilterMessage("failed to load conversation history").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_AppendSwallowsStorageFailure(t *testing.T) {
	store, mock, logs := newMockStore(t)
	mock.ExpectExec("INSERT INTO conversation_turns").
		WithArgs("C1", "user", "hello", sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	assert.NotPanics(t, func() {
		store.Append(context.Background(), "C1", RoleUser, "hello")
	})

	assert.Equal(t, 1, logs.FilterMessage("failed to save conversation turn").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_NilIsNoop(t *testing.T) {
	var nilStore *Store
	assert.NotPanics(t, func() {
		nilStore.Append(context.Background(), "C1", RoleUser, "x")
	})
	assert.Nil(t, nilStore.Recent(context.Background(), "C1", 5))

	detached := NewStore(nil, nil)
	detached.Append(context.Background(), "C1", RoleUser, "x")
	assert.Nil(t, detached.Recent(context.Background(), "C1", 5))
}

func TestRenderTranscript(t *testing.T) {
	assert.Empty(t, RenderTranscript(nil))

	got := RenderTranscript([]Turn{
		{Role: RoleUser, Content: "明日の天気は？"},
		{Role: RoleAssistant, Content: "晴れの予報です。"},
	})

	assert.Equal(t, "これまでの会話:\nユーザー: 明日の天気は？\nアシスタント: 晴れの予報です。\n", got)
}
