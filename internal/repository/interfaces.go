package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
)

// Conventions shared by every implementation:
//
//   - context.Context comes first on every method; all of these do I/O.
//   - Single-row lookups return nil, nil when the row does not exist.
//   - List methods return an empty slice, never nil, so JSON renders [].
//   - Persistence outages are reported wrapped in apperr.ErrBackendUnavailable.

// MessageRepository is the message ledger.
type MessageRepository interface {
	// Create appends a message and returns it with ID, CreatedAt and
	// UpdatedAt populated and IsRead false.
	Create(ctx context.Context, senderID, recipientID uuid.UUID, msgType models.MessageType, content string) (*models.Message, error)

	// GetByID returns a message. Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)

	// MarkRead flips IsRead to true and refreshes UpdatedAt. Reports
	// whether the row changed; an already-read message is left untouched.
	MarkRead(ctx context.Context, id uuid.UUID) (bool, error)

	// Delete removes a message permanently. Reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// ListReceived returns the recipient's inbox, newest first.
	ListReceived(ctx context.Context, recipientID uuid.UUID) ([]models.MessageView, error)

	// ListSent returns the sender's outbox, newest first.
	ListSent(ctx context.Context, senderID uuid.UUID) ([]models.MessageView, error)

	// CountByTypeSince counts every message in the system (not scoped to a
	// user) with CreatedAt >= since, per type.
	CountByTypeSince(ctx context.Context, since time.Time) (models.TypeCounts, error)
}

// GoalRepository holds reward goals and enforces at most one active goal.
type GoalRepository interface {
	// GetActive returns the active goal, or nil, nil if there is none.
	GetActive(ctx context.Context) (*models.RewardGoal, error)

	// GetByID returns a goal. Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.RewardGoal, error)

	// ReplaceActive atomically deactivates the active goal (if any) and
	// inserts a new active goal starting now. No reader ever observes zero
	// or two active goals while this runs.
	ReplaceActive(ctx context.Context, name string, requiredPoints int) (*models.RewardGoal, error)

	// MarkAchieved sets AchievedDate to now and deactivates the goal, but
	// only if it is still active and not yet achieved. Returns the updated
	// goal, or nil if no row qualified.
	MarkAchieved(ctx context.Context, id uuid.UUID) (*models.RewardGoal, error)

	// History returns up to limit goals, newest StartDate first.
	History(ctx context.Context, limit int) ([]models.RewardGoal, error)

	// Count returns the number of goals ever created.
	Count(ctx context.Context) (int, error)
}

// UserRepository handles user data.
type UserRepository interface {
	Create(ctx context.Context, email, name, department, passwordHash string) (*models.User, error)

	// GetByID returns a user. Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail is used for login and signup duplicate checks.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List returns every user ordered by signup time, oldest first.
	List(ctx context.Context) ([]models.User, error)

	// UpdateProfile applies the non-nil fields of upd. Returns nil, nil if
	// the user does not exist.
	UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error)
}

// LibraryRepository is the per-user word library.
type LibraryRepository interface {
	Create(ctx context.Context, userID uuid.UUID, content string, msgType models.MessageType, originalSenderName *string) (*models.LibraryEntry, error)

	// GetByID returns an entry. Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.LibraryEntry, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// ListByUser returns the user's entries, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LibraryEntry, error)

	CountByType(ctx context.Context, userID uuid.UUID) (models.TypeCounts, error)
}

// SlackSettingsRepository stores the single workspace Slack configuration.
type SlackSettingsRepository interface {
	// Get returns the settings, or nil, nil if never saved.
	Get(ctx context.Context) (*models.SlackSettings, error)

	Save(ctx context.Context, settings models.SlackSettings) (*models.SlackSettings, error)
}

// MotivationRepository holds each user's single shared motivation.
type MotivationRepository interface {
	// Upsert stores content as the user's motivation, replacing any
	// previous one. CreatedAt is kept on replacement; UpdatedAt is
	// refreshed.
	Upsert(ctx context.Context, userID uuid.UUID, content string) (*models.Motivation, error)

	// GetByID returns a motivation. Returns nil, nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Motivation, error)

	// GetByUser returns the user's motivation, or nil, nil if they have none.
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Motivation, error)

	// List returns every motivation, most recently updated first.
	List(ctx context.Context) ([]models.Motivation, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
