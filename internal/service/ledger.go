package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/cache"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/notify"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

// LedgerConfig wires a LedgerService. Messages and Logger are required;
// the rest are optional and default to no-ops.
type LedgerConfig struct {
	Messages repository.MessageRepository
	// Users, when set, is used to reject unknown recipients and to resolve
	// names and LINE ids for notifications.
	Users      repository.UserRepository
	Cache      cache.ProgressCache
	Feed       Feed
	Dispatcher Dispatcher
	AppURL     string
	Logger     *zap.Logger
}

type LedgerService struct {
	messages   repository.MessageRepository
	users      repository.UserRepository
	cache      cache.ProgressCache
	feed       Feed
	dispatcher Dispatcher
	appURL     string
	logger     *zap.Logger
}

func NewLedgerService(cfg LedgerConfig) *LedgerService {
	s := &LedgerService{
		messages:   cfg.Messages,
		users:      cfg.Users,
		cache:      cfg.Cache,
		feed:       cfg.Feed,
		dispatcher: cfg.Dispatcher,
		appURL:     cfg.AppURL,
		logger:     cfg.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NopCache{}
	}
	if s.feed == nil {
		s.feed = nopFeed{}
	}
	if s.dispatcher == nil {
		s.dispatcher = nopDispatcher{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Append records a message from sender to recipient. Content is stored
// trimmed. Notification delivery happens in the background and cannot
// fail the append.
func (s *LedgerService) Append(ctx context.Context, senderID, recipientID uuid.UUID, msgType models.MessageType, content string) (*models.Message, error) {
	if senderID == uuid.Nil || recipientID == uuid.Nil {
		return nil, apperr.Validation("sender and recipient are required")
	}
	if senderID == recipientID {
		return nil, apperr.Validation("cannot send a message to yourself")
	}
	if !msgType.Valid() {
		return nil, apperr.Validation("message type must be thanks or honesty")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("message content must not be empty")
	}

	var recipient *models.User
	if s.users != nil {
		var err error
		recipient, err = s.users.GetByID(ctx, recipientID)
		if err != nil {
			return nil, fmt.Errorf("look up recipient: %w", err)
		}
		if recipient == nil {
			return nil, apperr.Validation("invalid recipient")
		}
	}

	msg, err := s.messages.Create(ctx, senderID, recipientID, msgType, content)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}

	s.cache.Invalidate(ctx)

	senderName := s.lookupName(ctx, senderID)
	recipientName := models.DisplayName("", "")
	lineID := ""
	if recipient != nil {
		recipientName = recipient.DisplayName()
		lineID = recipient.LineUserID
	}

	s.feed.SendToUser(recipientID, realtime.Event{
		Type: realtime.EventMessageReceived,
		Payload: models.MessageView{
			Message:       *msg,
			SenderName:    senderName,
			RecipientName: recipientName,
		},
	})
	s.feed.Broadcast(realtime.Event{Type: realtime.EventProgressUpdated})

	s.dispatcher.Dispatch(notify.Event{
		SenderName:      senderName,
		RecipientName:   recipientName,
		RecipientLineID: lineID,
		Type:            msg.Type,
		Content:         msg.Content,
		AppURL:          s.appURL,
	})

	return msg, nil
}

// lookupName resolves a display name for notifications. Lookup failures
// only cost the name, never the append.
func (s *LedgerService) lookupName(ctx context.Context, userID uuid.UUID) string {
	if s.users == nil {
		return models.DisplayName("", "")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("resolve sender name", zap.Stringer("user_id", userID), zap.Error(err))
		return models.DisplayName("", "")
	}
	if u == nil {
		return models.DisplayName("", "")
	}
	return u.DisplayName()
}

// MarkRead marks a message read on behalf of its recipient. Marking an
// already-read message is a no-op.
func (s *LedgerService) MarkRead(ctx context.Context, messageID, actingUserID uuid.UUID) error {
	msg, err := s.recipientOnly(ctx, messageID, actingUserID, "only the recipient can mark a message as read")
	if err != nil {
		return err
	}
	if msg.IsRead {
		return nil
	}
	changed, err := s.messages.MarkRead(ctx, messageID)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if changed {
		return nil
	}

	// Nothing changed: either a concurrent call already marked it read, or
	// the message was deleted after the ownership check.
	current, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if current == nil {
		return apperr.NotFound("message not found")
	}
	return nil
}

// Delete permanently removes a message. Only its recipient may do this.
func (s *LedgerService) Delete(ctx context.Context, messageID, actingUserID uuid.UUID) error {
	if _, err := s.recipientOnly(ctx, messageID, actingUserID, "only the recipient can delete a message"); err != nil {
		return err
	}
	deleted, err := s.messages.Delete(ctx, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if !deleted {
		return apperr.NotFound("message not found")
	}

	s.cache.Invalidate(ctx)
	s.feed.Broadcast(realtime.Event{Type: realtime.EventProgressUpdated})
	return nil
}

func (s *LedgerService) recipientOnly(ctx context.Context, messageID, actingUserID uuid.UUID, denied string) (*models.Message, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return nil, apperr.NotFound("message not found")
	}
	if msg.RecipientID != actingUserID {
		return nil, apperr.Forbidden(denied)
	}
	return msg, nil
}

// ListReceived returns the user's inbox, newest first. An unavailable
// backend yields an empty inbox instead of an error.
func (s *LedgerService) ListReceived(ctx context.Context, userID uuid.UUID) ([]models.MessageView, error) {
	msgs, err := s.messages.ListReceived(ctx, userID)
	return s.degradeList(msgs, err, "list received messages")
}

// ListSent returns the user's outbox, newest first, degrading like
// ListReceived.
func (s *LedgerService) ListSent(ctx context.Context, userID uuid.UUID) ([]models.MessageView, error) {
	msgs, err := s.messages.ListSent(ctx, userID)
	return s.degradeList(msgs, err, "list sent messages")
}

func (s *LedgerService) degradeList(msgs []models.MessageView, err error, op string) ([]models.MessageView, error) {
	if err != nil {
		if errors.Is(err, apperr.ErrBackendUnavailable) {
			s.logger.Warn(op+" degraded to empty", zap.Error(err))
			return []models.MessageView{}, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if msgs == nil {
		msgs = []models.MessageView{}
	}
	return msgs, nil
}

// CountByTypeSince counts every message in the system created at or after
// since.
func (s *LedgerService) CountByTypeSince(ctx context.Context, since time.Time) (models.TypeCounts, error) {
	counts, err := s.messages.CountByTypeSince(ctx, since)
	if err != nil {
		return models.TypeCounts{}, fmt.Errorf("count messages: %w", err)
	}
	return counts, nil
}

// MessageFilter narrows an inbox listing. The zero value matches everything.
type MessageFilter struct {
	Type   models.MessageType
	Unread bool
}

// FilterMessages returns the messages matching f, preserving order.
func FilterMessages(msgs []models.MessageView, f MessageFilter) []models.MessageView {
	out := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Unread && m.IsRead {
			continue
		}
		out = append(out, m)
	}
	return out
}

func UnreadCount(msgs []models.MessageView) int {
	n := 0
	for _, m := range msgs {
		if !m.IsRead {
			n++
		}
	}
	return n
}
