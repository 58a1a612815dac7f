package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSettings struct {
	settings *models.SlackSettings
	err      error
}

func (s staticSettings) Get(context.Context) (*models.SlackSettings, error) {
	return s.settings, s.err
}

// captureServer records every JSON body posted to it.
type captureServer struct {
	*httptest.Server
	mu     sync.Mutex
	bodies []map[string]any
	auth   []string
	status int
}

func newCaptureServer(t *testing.T, status int) *captureServer {
	cs := &captureServer{status: status}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		cs.mu.Lock()
		cs.bodies = append(cs.bodies, body)
		cs.auth = append(cs.auth, r.Header.Get("Authorization"))
		cs.mu.Unlock()
		w.WriteHeader(cs.status)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *captureServer) count() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.bodies)
}

func newTestSlack(src SettingsSource, fallback SlackConfig, server *captureServer) *SlackNotifier {
	s := NewSlackNotifier(src, fallback, server.Client(), zap.NewNop())
	s.webhookPrefix = server.URL
	return s
}

var thanksEvent = Event{
	SenderName:    "Alice",
	RecipientName: "Bob",
	Type:          models.MessageTypeThanks,
	Content:       "thanks for the review",
}

func TestValidWebhookURL(t *testing.T) {
	assert.True(t, ValidWebhookURL("https://hooks.slack.com/services/T/B/x"))
	assert.False(t, ValidWebhookURL("http://hooks.slack.com/services/T/B/x"))
	assert.False(t, ValidWebhookURL("https://example.com/hook"))
	assert.False(t, ValidWebhookURL(""))
}

func TestSlack_PostsUsingSavedSettings(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	src := staticSettings{settings: &models.SlackSettings{
		WebhookURL: server.URL + "/hook",
		Channel:    "#kudos",
		IsEnabled:  true,
	}}

	err := newTestSlack(src, SlackConfig{}, server).Notify(context.Background(), thanksEvent)
	require.NoError(t, err)

	require.Equal(t, 1, server.count())
	body := server.bodies[0]
	assert.Equal(t, "#kudos", body["channel"])
	assert.Contains(t, body["text"], "Alice sent Bob a thanks message")
	assert.Contains(t, body["text"], "> thanks for the review")
}

func TestSlack_DisabledSettingsSkip(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	src := staticSettings{settings: &models.SlackSettings{WebhookURL: server.URL + "/hook"}}
	fallback := SlackConfig{WebhookURL: server.URL + "/env"}

	err := newTestSlack(src, fallback, server).Notify(context.Background(), thanksEvent)
	require.NoError(t, err)
	assert.Equal(t, 0, server.count())
}

func TestSlack_FallsBackToEnvironment(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	fallback := SlackConfig{WebhookURL: server.URL + "/env", Channel: "#general"}

	for _, src := range []SettingsSource{staticSettings{}, staticSettings{err: errors.New("db down")}} {
		err := newTestSlack(src, fallback, server).Notify(context.Background(), thanksEvent)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, server.count())
}

func TestSlack_RejectsForeignWebhook(t *testing.T) {
	s := NewSlackNotifier(nil, SlackConfig{WebhookURL: "https://example.com/hook"}, nil, zap.NewNop())
	err := s.Notify(context.Background(), thanksEvent)
	assert.ErrorIs(t, err, ErrInvalidWebhook)
}

func TestSlack_Non2xxIsError(t *testing.T) {
	server := newCaptureServer(t, http.StatusInternalServerError)
	err := newTestSlack(nil, SlackConfig{WebhookURL: server.URL + "/hook"}, server).
		Announce(context.Background(), "goal reached")
	assert.Error(t, err)
}

func TestLine_PushesToRecipient(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	l := NewLineNotifier("tok", server.URL, server.Client())

	ev := thanksEvent
	ev.RecipientLineID = "U123"
	require.NoError(t, l.Notify(context.Background(), ev))

	require.Equal(t, 1, server.count())
	assert.Equal(t, "Bearer tok", server.auth[0])
	assert.Equal(t, "U123", server.bodies[0]["to"])
	messages := server.bodies[0]["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0].(map[string]any)["text"], "from Alice")
}

func TestLine_SkipsWithoutLineID(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	l := NewLineNotifier("tok", server.URL, server.Client())

	require.NoError(t, l.Notify(context.Background(), thanksEvent))
	assert.Equal(t, 0, server.count())
}

type countingNotifier struct {
	calls atomic.Int32
	err   error
}

func (n *countingNotifier) Name() string { return "counting" }

func (n *countingNotifier) Notify(context.Context, Event) error {
	n.calls.Add(1)
	return n.err
}

func TestDispatcher_FailuresDoNotStopOtherSinks(t *testing.T) {
	failing := &countingNotifier{err: errors.New("boom")}
	ok := &countingNotifier{}
	d := NewDispatcher(time.Second, zap.NewNop(), failing, ok)

	d.Dispatch(thanksEvent)
	d.Dispatch(thanksEvent)
	d.Wait()

	assert.Equal(t, int32(2), failing.calls.Load())
	assert.Equal(t, int32(2), ok.calls.Load())
}
