package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActive_NoGoalYet(t *testing.T) {
	f := newFixture(t)

	goal, err := f.goals.Active(context.Background())
	require.NoError(t, err)
	assert.Nil(t, goal)
}

func TestCreateNew_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.goals.CreateNew(ctx, "   ", 5)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.goals.CreateNew(ctx, "Lunch", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.goals.CreateNew(ctx, "Lunch", -3)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	assert.Equal(t, 0, f.store.Goals().ActiveCount())
}

func TestCreateNew_SequentialKeepsLatestActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var last uuid.UUID
	for i := 0; i < 5; i++ {
		f.clock.Set(9+i, 0)
		g, err := f.goals.CreateNew(ctx, fmt.Sprintf("goal %d", i), 10)
		require.NoError(t, err)
		assert.True(t, g.IsActive)
		assert.Nil(t, g.AchievedDate)
		assert.Equal(t, clockAt(9+i, 0), g.StartDate)
		last = g.ID

		assert.Equal(t, 1, f.store.Goals().ActiveCount())
	}

	active, err := f.goals.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, last, active.ID)

	// Replaced goals are inactive but never marked achieved.
	history, err := f.goals.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for _, g := range history[1:] {
		assert.False(t, g.IsActive)
		assert.Nil(t, g.AchievedDate)
	}
}

func TestCreateNew_ConcurrentKeepsSingleActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.goals.CreateNew(ctx, fmt.Sprintf("goal %d", i), 3)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, f.store.Goals().ActiveCount())
	active, err := f.goals.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
}

func TestCreateNew_BroadcastsAndInvalidates(t *testing.T) {
	f := newFixture(t)

	_, err := f.goals.CreateNew(context.Background(), "Pizza", 20)
	require.NoError(t, err)

	assert.Equal(t, []realtime.EventType{realtime.EventGoalChanged}, f.feed.broadcastTypes())
	assert.Equal(t, 1, f.cache.invalidations)
}

func TestCreateNew_BackendFailurePropagates(t *testing.T) {
	goals := NewGoalService(failingGoals{err: apperr.Unavailable(errors.New("down"))}, nil, nil, zap.NewNop())

	_, err := goals.CreateNew(context.Background(), "Pizza", 20)
	assert.ErrorIs(t, err, apperr.ErrBackendUnavailable)
}

func TestMarkAchieved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.goals.CreateNew(ctx, "Cake", 2)
	require.NoError(t, err)

	f.clock.Set(12, 0)
	done, err := f.goals.MarkAchieved(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, done.IsActive)
	require.NotNil(t, done.AchievedDate)
	assert.Equal(t, clockAt(12, 0), *done.AchievedDate)

	active, err := f.goals.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = f.goals.MarkAchieved(ctx, g.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.goals.MarkAchieved(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMarkAchieved_ReplacedGoalIsInvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old, err := f.goals.CreateNew(ctx, "Old", 2)
	require.NoError(t, err)
	_, err = f.goals.CreateNew(ctx, "New", 2)
	require.NoError(t, err)

	_, err = f.goals.MarkAchieved(ctx, old.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestClampHistoryLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, ClampHistoryLimit(0))
	assert.Equal(t, DefaultHistoryLimit, ClampHistoryLimit(-4))
	assert.Equal(t, 1, ClampHistoryLimit(1))
	assert.Equal(t, 55, ClampHistoryLimit(55))
	assert.Equal(t, MaxHistoryLimit, ClampHistoryLimit(1000))
}

func TestHistory_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		f.clock.Set(9+i, 0)
		_, err := f.goals.CreateNew(ctx, name, 1)
		require.NoError(t, err)
	}

	history, err := f.goals.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].Name)
	assert.Equal(t, "b", history[1].Name)

	empty, err := newFixture(t).goals.History(ctx, 5)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestEnsureDefault_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.goals.EnsureDefault(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	active, err := f.goals.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, DefaultGoalName, active.Name)
	assert.Equal(t, DefaultGoalPoints, active.RequiredPoints)

	// Achieving the default must not bring it back.
	_, err = f.goals.MarkAchieved(ctx, active.ID)
	require.NoError(t, err)

	created, err = f.goals.EnsureDefault(ctx)
	require.NoError(t, err)
	assert.False(t, created)
}
