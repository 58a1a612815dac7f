package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageType is the kind of a ledger entry. Every entry is worth one point.
type MessageType string

const (
	MessageTypeThanks  MessageType = "thanks"
	MessageTypeHonesty MessageType = "honesty"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeThanks || t == MessageTypeHonesty
}

// ParseMessageType accepts the wire form of a message type.
func ParseMessageType(s string) (MessageType, bool) {
	t := MessageType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// User is a colleague who can send and receive messages.
//
// There is exactly one user shape. Callers never need to check for optional
// fields to tell "kinds" of users apart; use DisplayName for rendering.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Department   string    `json:"department,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	LineUserID   string    `json:"line_user_id,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) DisplayName() string {
	return DisplayName(u.Name, u.Email)
}

// DisplayName picks the name shown for a user: the profile name, else the
// local part of the email, else "anonymous".
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return "anonymous"
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name       *string
	Department *string
	AvatarURL  *string
	LineUserID *string
}

// Message is one directed ledger entry.
//
// ID, SenderID, RecipientID, Type, Content and CreatedAt never change after
// creation. IsRead only ever goes false -> true.
type Message struct {
	ID          uuid.UUID   `json:"id"`
	SenderID    uuid.UUID   `json:"sender_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Type        MessageType `json:"type"`
	Content     string      `json:"content"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// MessageView is a message joined with the display names of both parties.
type MessageView struct {
	Message
	SenderName    string `json:"sender_name"`
	RecipientName string `json:"recipient_name"`
}

// TypeCounts is a per-type tally of ledger entries or library entries.
type TypeCounts struct {
	Thanks  int `json:"thanks"`
	Honesty int `json:"honesty"`
}

func (c TypeCounts) Total() int {
	return c.Thanks + c.Honesty
}

// RewardGoal is a team reward unlocked by accumulating points.
//
// At most one goal has IsActive set. Only IsActive (true -> false) and
// AchievedDate (nil -> set) change after creation.
type RewardGoal struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	RequiredPoints int        `json:"required_points"`
	StartDate      time.Time  `json:"start_date"`
	AchievedDate   *time.Time `json:"achieved_date"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Progress is the derived standing toward the active goal. Goal is nil when
// no goal is active, in which case every number is zero.
type Progress struct {
	Goal            *RewardGoal `json:"goal"`
	ThanksPoints    int         `json:"thanks_points"`
	HonestyPoints   int         `json:"honesty_points"`
	TotalPoints     int         `json:"total_points"`
	RequiredPoints  int         `json:"required_points"`
	RemainingPoints int         `json:"remaining_points"`
	Percentage      float64     `json:"percentage"`
	IsAchieved      bool        `json:"is_achieved"`
}

// LibraryEntry is wording a user archived into their personal word library.
type LibraryEntry struct {
	ID                 uuid.UUID   `json:"id"`
	UserID             uuid.UUID   `json:"user_id"`
	MessageContent     string      `json:"message_content"`
	MessageType        MessageType `json:"message_type"`
	OriginalSenderName *string     `json:"original_sender_name"`
	SavedAt            time.Time   `json:"saved_at"`
}

// SlackSettings is the single workspace-wide Slack webhook configuration.
type SlackSettings struct {
	WebhookURL string    `json:"webhook_url"`
	Channel    string    `json:"channel"`
	IsEnabled  bool      `json:"is_enabled"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Motivation is a user's personal statement of what keeps them going,
// shared with the whole team. A user has at most one.
type Motivation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
