package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/auth"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository"
	"github.com/lalith-99/heartfelt/internal/repository/memory"
	"github.com/lalith-99/heartfelt/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

// tickingClock advances one second per reading so every row gets a
// distinct, increasing timestamp.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fakeSlack struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSlack) Test(_ context.Context, webhookURL, channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, webhookURL+"|"+channel)
	return f.err
}

type testServer struct {
	router     *gin.Engine
	store      *memory.Store
	slack      *fakeSlack
	alice, bob *models.User
	aliceToken string
	bobToken   string
}

type serverOptions struct {
	goals repository.GoalRepository
}

func newTestServer(t *testing.T, opts ...func(*serverOptions)) *testServer {
	t.Helper()
	var o serverOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := zap.NewNop()
	store := memory.New()
	store.SetClock((&tickingClock{t: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)}).Now)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()
	alice, err := store.Users().Create(ctx, "alice@example.com", "Alice", "Design", string(hash))
	require.NoError(t, err)
	bob, err := store.Users().Create(ctx, "bob@example.com", "Bob", "Sales", string(hash))
	require.NoError(t, err)

	goals := repository.GoalRepository(store.Goals())
	if o.goals != nil {
		goals = o.goals
	}

	ledger := service.NewLedgerService(service.LedgerConfig{
		Messages: store.Messages(),
		Users:    store.Users(),
		Logger:   logger,
	})
	slack := &fakeSlack{}

	router := NewRouter(RouterConfig{JWTSecret: testSecret, Logger: logger}, Handlers{
		Health:   NewHealthHandler(nil, logger),
		Auth:     NewAuthHandler(store.Users(), testSecret, time.Hour, logger),
		Messages: NewMessageHandler(ledger, logger),
		Goals: NewGoalHandler(
			service.NewGoalService(goals, nil, nil, logger),
			service.NewProgressService(goals, store.Messages(), nil, logger),
			logger,
		),
		Library:  NewLibraryHandler(service.NewLibraryService(store.Library(), logger), logger),
		Users:    NewUserHandler(store.Users(), logger),
		Settings: NewSettingsHandler(store.SlackSettings(), slack, logger),

		Motivations: NewMotivationHandler(service.NewMotivationService(store.Motivations(), logger), logger),
	})

	aliceToken, err := auth.GenerateToken(alice.ID, alice.Email, testSecret, time.Hour)
	require.NoError(t, err)
	bobToken, err := auth.GenerateToken(bob.ID, bob.Email, testSecret, time.Hour)
	require.NoError(t, err)

	return &testServer{
		router:     router,
		store:      store,
		slack:      slack,
		alice:      alice,
		bob:        bob,
		aliceToken: aliceToken,
		bobToken:   bobToken,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

// unavailableGoals fails every call the way an unreachable database does.
type unavailableGoals struct{}

var errDown = apperr.Unavailable(errors.New("dial tcp 10.0.0.5:5432: connection refused"))

func (unavailableGoals) GetActive(context.Context) (*models.RewardGoal, error) { return nil, errDown }
func (unavailableGoals) GetByID(context.Context, uuid.UUID) (*models.RewardGoal, error) {
	return nil, errDown
}
func (unavailableGoals) ReplaceActive(context.Context, string, int) (*models.RewardGoal, error) {
	return nil, errDown
}
func (unavailableGoals) MarkAchieved(context.Context, uuid.UUID) (*models.RewardGoal, error) {
	return nil, errDown
}
func (unavailableGoals) History(context.Context, int) ([]models.RewardGoal, error) {
	return nil, errDown
}
func (unavailableGoals) Count(context.Context) (int, error) { return 0, errDown }
