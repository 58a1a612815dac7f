package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

func TestLibrary_SaveListStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.clock.Set(9, 0)
	first, err := f.library.Save(ctx, f.bob.ID, "  you made my day  ", models.MessageTypeThanks, strPtr(" Alice "))
	require.NoError(t, err)
	assert.Equal(t, "you made my day", first.MessageContent)
	require.NotNil(t, first.OriginalSenderName)
	assert.Equal(t, "Alice", *first.OriginalSenderName)

	f.clock.Set(10, 0)
	second, err := f.library.Save(ctx, f.bob.ID, "honest feedback helps", models.MessageTypeHonesty, strPtr("   "))
	require.NoError(t, err)
	assert.Nil(t, second.OriginalSenderName)

	_, err = f.library.Save(ctx, f.alice.ID, "alice's own", models.MessageTypeThanks, nil)
	require.NoError(t, err)

	entries, err := f.library.List(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)

	stats, err := f.library.Stats(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TypeCounts{Thanks: 1, Honesty: 1}, stats)
}

func TestLibrary_SaveValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.library.Save(ctx, f.bob.ID, "  ", models.MessageTypeThanks, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.library.Save(ctx, f.bob.ID, "hi", models.MessageType("other"), nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLibrary_RemoveOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entry, err := f.library.Save(ctx, f.bob.ID, "keep this", models.MessageTypeThanks, nil)
	require.NoError(t, err)

	err = f.library.Remove(ctx, entry.ID, f.alice.ID)
	assert.ErrorIs(t, err, apperr.ErrAuthorization)

	require.NoError(t, f.library.Remove(ctx, entry.ID, f.bob.ID))

	err = f.library.Remove(ctx, entry.ID, f.bob.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	entries, err := f.library.List(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLibrary_ListDegrades(t *testing.T) {
	library := NewLibraryService(failingLibrary{err: apperr.Unavailable(errors.New("down"))}, zap.NewNop())

	entries, err := library.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
