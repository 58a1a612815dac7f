package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/db"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(store *memory.Store) *app {
	return &app{
		databaseURL: "postgres://test",
		logLevel:    "error",
		open: func(context.Context, *app) (stores, func(), error) {
			return stores{goals: store.Goals(), messages: store.Messages()}, func() {}, nil
		},
	}
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(a)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGoalCommands(t *testing.T) {
	store := memory.New()
	a := newTestApp(store)

	out, err := execute(t, a, "goal", "create", "--name", "Pizza night", "--points", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Pizza night")
	assert.Contains(t, out, "active")

	active, err := store.Goals().GetActive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, active)

	_, err = store.Messages().Create(context.Background(), uuid.New(), uuid.New(), models.MessageTypeThanks, "hi")
	require.NoError(t, err)

	out, err = execute(t, a, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Pizza night: 1/2 points (50%), 1 to go")

	out, err = execute(t, a, "goal", "achieve", active.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "achieved")

	_, err = execute(t, a, "goal", "achieve", active.ID.String())
	assert.Error(t, err)

	_, err = execute(t, a, "goal", "achieve", "nope")
	assert.Error(t, err)

	out, err = execute(t, a, "goal", "history", "--limit", "5")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Pizza night"))

	out, err = execute(t, a, "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "no active goal")
}

func TestGoalCreateRejectsBadPoints(t *testing.T) {
	a := newTestApp(memory.New())
	_, err := execute(t, a, "goal", "create", "--name", "x", "--points", "0")
	assert.ErrorContains(t, err, "required points must be positive")
}

func TestMigrateCommand(t *testing.T) {
	a := newTestApp(memory.New())
	var gotURL string
	var gotDir db.Direction
	a.migrate = func(databaseURL string, dir db.Direction, _ *zap.Logger) error {
		gotURL, gotDir = databaseURL, dir
		return nil
	}

	out, err := execute(t, a, "migrate", "down", "--database-url", "postgres://other")
	require.NoError(t, err)
	assert.Equal(t, "postgres://other", gotURL)
	assert.Equal(t, db.Down, gotDir)
	assert.Contains(t, out, "migrations down: done")

	a.databaseURL = ""
	_, err = execute(t, a, "migrate", "up", "--database-url", "")
	assert.Error(t, err)
}
