package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/notify"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/lalith-99/heartfelt/internal/repository"
	"github.com/lalith-99/heartfelt/internal/repository/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(hour, minute int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = clockAt(hour, minute)
}

func clockAt(hour, minute int) time.Time {
	return time.Date(2026, 10, 17, hour, minute, 0, 0, time.UTC)
}

type recordingFeed struct {
	mu         sync.Mutex
	broadcasts []realtime.Event
	direct     map[uuid.UUID][]realtime.Event
}

func (f *recordingFeed) Broadcast(ev realtime.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, ev)
}

func (f *recordingFeed) SendToUser(userID uuid.UUID, ev realtime.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.direct == nil {
		f.direct = make(map[uuid.UUID][]realtime.Event)
	}
	f.direct[userID] = append(f.direct[userID], ev)
}

func (f *recordingFeed) broadcastTypes() []realtime.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]realtime.EventType, 0, len(f.broadcasts))
	for _, ev := range f.broadcasts {
		out = append(out, ev.Type)
	}
	return out
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(ev notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

// memCache is an in-process ProgressCache that counts its traffic.
type memCache struct {
	mu            sync.Mutex
	goalID        uuid.UUID
	counts        models.TypeCounts
	filled        bool
	generation    int64
	hits          int
	invalidations int
}

func (c *memCache) Get(_ context.Context, goalID uuid.UUID) (models.TypeCounts, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled || c.goalID != goalID {
		return models.TypeCounts{}, false
	}
	c.hits++
	return c.counts, true
}

func (c *memCache) Generation(context.Context) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, true
}

func (c *memCache) Set(_ context.Context, goalID uuid.UUID, generation int64, counts models.TypeCounts) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return
	}
	c.goalID, c.counts, c.filled = goalID, counts, true
}

func (c *memCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filled = false
	c.generation++
	c.invalidations++
}

// failingMessages fails the methods it overrides with err and panics on
// the rest through the nil embedded interface.
type failingMessages struct {
	repository.MessageRepository
	err error
}

func (f failingMessages) Create(context.Context, uuid.UUID, uuid.UUID, models.MessageType, string) (*models.Message, error) {
	return nil, f.err
}

func (f failingMessages) ListReceived(context.Context, uuid.UUID) ([]models.MessageView, error) {
	return nil, f.err
}

func (f failingMessages) ListSent(context.Context, uuid.UUID) ([]models.MessageView, error) {
	return nil, f.err
}

func (f failingMessages) CountByTypeSince(context.Context, time.Time) (models.TypeCounts, error) {
	return models.TypeCounts{}, f.err
}

type failingGoals struct {
	repository.GoalRepository
	err error
}

func (f failingGoals) GetActive(context.Context) (*models.RewardGoal, error) {
	return nil, f.err
}

func (f failingGoals) ReplaceActive(context.Context, string, int) (*models.RewardGoal, error) {
	return nil, f.err
}

type failingLibrary struct {
	repository.LibraryRepository
	err error
}

func (f failingLibrary) ListByUser(context.Context, uuid.UUID) ([]models.LibraryEntry, error) {
	return nil, f.err
}

type failingMotivations struct {
	repository.MotivationRepository
	err error
}

func (f failingMotivations) List(context.Context) ([]models.Motivation, error) {
	return nil, f.err
}

type fixture struct {
	store      *memory.Store
	clock      *testClock
	cache      *memCache
	feed       *recordingFeed
	dispatcher *recordingDispatcher

	ledger   *LedgerService
	goals    *GoalService
	progress *ProgressService
	library  *LibraryService

	motivations *MotivationService

	alice *models.User
	bob   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:      memory.New(),
		clock:      &testClock{t: clockAt(8, 0)},
		cache:      &memCache{},
		feed:       &recordingFeed{},
		dispatcher: &recordingDispatcher{},
	}
	f.store.SetClock(f.clock.Now)
	logger := zap.NewNop()

	f.ledger = NewLedgerService(LedgerConfig{
		Messages:   f.store.Messages(),
		Users:      f.store.Users(),
		Cache:      f.cache,
		Feed:       f.feed,
		Dispatcher: f.dispatcher,
		AppURL:     "https://heartfelt.example",
		Logger:     logger,
	})
	f.goals = NewGoalService(f.store.Goals(), f.cache, f.feed, logger)
	f.progress = NewProgressService(f.store.Goals(), f.store.Messages(), f.cache, logger)
	f.library = NewLibraryService(f.store.Library(), logger)
	f.motivations = NewMotivationService(f.store.Motivations(), logger)

	ctx := context.Background()
	var err error
	f.alice, err = f.store.Users().Create(ctx, "alice@example.com", "Alice", "Design", "x")
	require.NoError(t, err)
	f.bob, err = f.store.Users().Create(ctx, "bob@example.com", "Bob", "Sales", "x")
	require.NoError(t, err)
	return f
}

func (f *fixture) send(t *testing.T, from, to *models.User, msgType models.MessageType, content string) *models.Message {
	t.Helper()
	msg, err := f.ledger.Append(context.Background(), from.ID, to.ID, msgType, content)
	require.NoError(t, err)
	return msg
}
