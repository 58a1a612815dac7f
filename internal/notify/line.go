package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lalith-99/heartfelt/internal/models"
)

const DefaultLineAPIURL = "https://api.line.me"

// LineNotifier pushes a text message to the recipient's LINE account
// through the Messaging API.
type LineNotifier struct {
	token  string
	apiURL string
	client *http.Client
}

func NewLineNotifier(token, apiURL string, client *http.Client) *LineNotifier {
	if apiURL == "" {
		apiURL = DefaultLineAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &LineNotifier{
		token:  token,
		apiURL: strings.TrimRight(apiURL, "/"),
		client: client,
	}
}

func (l *LineNotifier) Name() string { return "line" }

type linePush struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify skips recipients who have not linked a LINE account.
func (l *LineNotifier) Notify(ctx context.Context, ev Event) error {
	if l.token == "" || ev.RecipientLineID == "" {
		return nil
	}

	emoji, label := "💭", "Honesty message"
	if ev.Type == models.MessageTypeThanks {
		emoji, label = "💖", "Thank-you message"
	}
	text := fmt.Sprintf("%s %s from %s\n\n%s", emoji, label, ev.SenderName, ev.Content)

	body, err := json.Marshal(linePush{
		To:       ev.RecipientLineID,
		Messages: []lineMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("encode line push: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.apiURL+"/v2/bot/message/push", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.token)

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("push to line: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("line push returned %d", resp.StatusCode)
	}
	return nil
}
