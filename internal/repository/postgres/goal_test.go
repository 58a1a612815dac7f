package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/lalith-99/heartfelt/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testDB connects to HEARTFELT_TEST_DATABASE_URL, migrates it and empties
// the goal table. Tests that need Postgres skip without it.
func testDB(t *testing.T) *db.DB {
	t.Helper()
	url := os.Getenv("HEARTFELT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("HEARTFELT_TEST_DATABASE_URL not set")
	}

	logger := zap.NewNop()
	require.NoError(t, db.Migrate(url, db.Up, logger))

	database, err := db.New(context.Background(), url, logger)
	require.NoError(t, err)
	t.Cleanup(database.Close)

	_, err = database.Pool().Exec(context.Background(), `TRUNCATE reward_goals`)
	require.NoError(t, err)
	return database
}

func TestGoalStore_ConcurrentSwapsLeaveNewestActive(t *testing.T) {
	database := testDB(t)
	store := NewGoalStore(database.Pool())
	ctx := context.Background()

	const swaps = 20
	var wg sync.WaitGroup
	for i := 0; i < swaps; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.ReplaceActive(ctx, fmt.Sprintf("goal %d", i), 5)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := store.History(ctx, 100)
	require.NoError(t, err)
	require.Len(t, history, swaps)

	// The surviving active goal must be the one with the latest start, so
	// it heads the history.
	assert.True(t, history[0].IsActive, "newest goal %q is not the active one", history[0].Name)
	for _, g := range history[1:] {
		assert.False(t, g.IsActive, "goal %q still active", g.Name)
	}

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, history[0].ID, active.ID)
}
