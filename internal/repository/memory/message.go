package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
)

type messageRow struct {
	msg models.Message
	seq int64
}

type MessageStore struct {
	s *Store
}

func (m *MessageStore) Create(_ context.Context, senderID, recipientID uuid.UUID, msgType models.MessageType, content string) (*models.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	now := m.s.now()
	row := &messageRow{
		msg: models.Message{
			ID:          uuid.New(),
			SenderID:    senderID,
			RecipientID: recipientID,
			Type:        msgType,
			Content:     content,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		seq: m.s.nextSeq(),
	}
	m.s.messages[row.msg.ID] = row

	out := row.msg
	return &out, nil
}

func (m *MessageStore) GetByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	row, ok := m.s.messages[id]
	if !ok {
		return nil, nil
	}
	out := row.msg
	return &out, nil
}

func (m *MessageStore) MarkRead(_ context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	row, ok := m.s.messages[id]
	if !ok || row.msg.IsRead {
		return false, nil
	}
	row.msg.IsRead = true
	row.msg.UpdatedAt = m.s.now()
	return true, nil
}

func (m *MessageStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.messages[id]; !ok {
		return false, nil
	}
	delete(m.s.messages, id)
	return true, nil
}

func (m *MessageStore) ListReceived(_ context.Context, recipientID uuid.UUID) ([]models.MessageView, error) {
	return m.list(func(msg *models.Message) bool { return msg.RecipientID == recipientID }), nil
}

func (m *MessageStore) ListSent(_ context.Context, senderID uuid.UUID) ([]models.MessageView, error) {
	return m.list(func(msg *models.Message) bool { return msg.SenderID == senderID }), nil
}

func (m *MessageStore) list(match func(*models.Message) bool) []models.MessageView {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := make([]*messageRow, 0)
	for _, row := range m.s.messages {
		if match(&row.msg) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].msg.CreatedAt.Equal(rows[j].msg.CreatedAt) {
			return rows[i].msg.CreatedAt.After(rows[j].msg.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	views := make([]models.MessageView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.MessageView{
			Message:       row.msg,
			SenderName:    m.s.displayNameLocked(row.msg.SenderID),
			RecipientName: m.s.displayNameLocked(row.msg.RecipientID),
		})
	}
	return views
}

func (m *MessageStore) CountByTypeSince(_ context.Context, since time.Time) (models.TypeCounts, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var counts models.TypeCounts
	for _, row := range m.s.messages {
		if row.msg.CreatedAt.Before(since) {
			continue
		}
		switch row.msg.Type {
		case models.MessageTypeThanks:
			counts.Thanks++
		case models.MessageTypeHonesty:
			counts.Honesty++
		}
	}
	return counts, nil
}
