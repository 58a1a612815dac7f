package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lalith-99/heartfelt/internal/models"
	"go.uber.org/zap"
)

const slackWebhookPrefix = "https://hooks.slack.com/"

var ErrInvalidWebhook = errors.New("invalid slack webhook url")

// ValidWebhookURL reports whether u is an incoming-webhook URL we are
// willing to post to.
func ValidWebhookURL(u string) bool {
	return strings.HasPrefix(u, slackWebhookPrefix)
}

// SettingsSource is where the workspace Slack settings live.
type SettingsSource interface {
	Get(ctx context.Context) (*models.SlackSettings, error)
}

// SlackConfig is the environment fallback used until settings are saved.
type SlackConfig struct {
	WebhookURL string
	Channel    string
}

type SlackNotifier struct {
	settings SettingsSource
	fallback SlackConfig
	client   *http.Client
	logger   *zap.Logger

	// webhookPrefix is replaced in tests to point at httptest servers.
	webhookPrefix string
}

func NewSlackNotifier(settings SettingsSource, fallback SlackConfig, client *http.Client, logger *zap.Logger) *SlackNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackNotifier{
		settings:      settings,
		fallback:      fallback,
		client:        client,
		logger:        logger,
		webhookPrefix: slackWebhookPrefix,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

type slackPayload struct {
	Channel   string `json:"channel,omitempty"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
	Text      string `json:"text"`
}

func (s *SlackNotifier) Notify(ctx context.Context, ev Event) error {
	return s.Announce(ctx, formatMessage(ev))
}

// Announce posts free-form text to the configured webhook. It is a no-op
// when Slack is disabled or no webhook is configured.
func (s *SlackNotifier) Announce(ctx context.Context, text string) error {
	webhookURL, channel, ok := s.resolve(ctx)
	if !ok {
		return nil
	}
	return s.post(ctx, webhookURL, channel, text)
}

// Test sends a fixed message to webhookURL, ignoring the saved settings.
func (s *SlackNotifier) Test(ctx context.Context, webhookURL, channel string) error {
	return s.post(ctx, webhookURL, channel, "🎯 Heartfelt test notification. Slack is connected!")
}

// resolve prefers saved settings and falls back to the environment. Saved
// settings that are disabled switch Slack off entirely.
func (s *SlackNotifier) resolve(ctx context.Context) (string, string, bool) {
	if s.settings != nil {
		saved, err := s.settings.Get(ctx)
		if err != nil {
			s.logger.Warn("load slack settings failed, using environment", zap.Error(err))
		} else if saved != nil {
			if !saved.IsEnabled || saved.WebhookURL == "" {
				return "", "", false
			}
			return saved.WebhookURL, saved.Channel, true
		}
	}
	if s.fallback.WebhookURL == "" {
		return "", "", false
	}
	return s.fallback.WebhookURL, s.fallback.Channel, true
}

func (s *SlackNotifier) post(ctx context.Context, webhookURL, channel, text string) error {
	if !strings.HasPrefix(webhookURL, s.webhookPrefix) {
		return ErrInvalidWebhook
	}

	body, err := json.Marshal(slackPayload{
		Channel:   channel,
		Username:  "Heartfelt Bot",
		IconEmoji: ":heart:",
		Text:      text,
	})
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("slack webhook returned %d", resp.StatusCode)
	}
	return nil
}

func formatMessage(ev Event) string {
	emoji, label := "💭", "honesty"
	if ev.Type == models.MessageTypeThanks {
		emoji, label = "💚", "thanks"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s sent %s a %s message!\n\n> %s", emoji, ev.SenderName, ev.RecipientName, label, ev.Content)
	if ev.AppURL != "" {
		fmt.Fprintf(&b, "\n\n<%s|Open Heartfelt>", ev.AppURL)
	}
	return b.String()
}
