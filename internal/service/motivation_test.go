package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMotivation_SaveTrimsAndReplaces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(9, 0)
	first, err := f.motivations.Save(ctx, f.alice.ID, "  the people I work with  ")
	require.NoError(t, err)
	assert.Equal(t, "the people I work with", first.Content)
	assert.Equal(t, "Alice", first.UserName)

	f.clock.Set(9, 30)
	_, err = f.motivations.Save(ctx, f.bob.ID, "closing deals")
	require.NoError(t, err)

	f.clock.Set(10, 0)
	second, err := f.motivations.Save(ctx, f.alice.ID, "good coffee")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := f.motivations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "good coffee", list[0].Content)
	assert.Equal(t, "closing deals", list[1].Content)

	mine, err := f.motivations.Mine(ctx, f.alice.ID)
	require.NoError(t, err)
	require.NotNil(t, mine)
	assert.Equal(t, "good coffee", mine.Content)
}

func TestMotivation_SaveRejectsBlank(t *testing.T) {
	f := newFixture(t)

	_, err := f.motivations.Save(context.Background(), f.alice.ID, " \n\t ")
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	mine, err := f.motivations.Mine(context.Background(), f.alice.ID)
	require.NoError(t, err)
	assert.Nil(t, mine)
}

func TestMotivation_RemoveOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.motivations.Save(ctx, f.alice.ID, "shipping")
	require.NoError(t, err)

	err = f.motivations.Remove(ctx, m.ID, f.bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrAuthorization))

	err = f.motivations.Remove(ctx, uuid.New(), f.alice.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, f.motivations.Remove(ctx, m.ID, f.alice.ID))

	list, err := f.motivations.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMotivation_RemoveMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.motivations.RemoveMine(ctx, f.bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = f.motivations.Save(ctx, f.bob.ID, "the team")
	require.NoError(t, err)
	require.NoError(t, f.motivations.RemoveMine(ctx, f.bob.ID))

	mine, err := f.motivations.Mine(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Nil(t, mine)
}

func TestMotivation_ListDegrades(t *testing.T) {
	motivations := NewMotivationService(failingMotivations{err: apperr.Unavailable(errors.New("down"))}, zap.NewNop())

	list, err := motivations.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
