package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
)

type libraryRow struct {
	entry models.LibraryEntry
	seq   int64
}

type LibraryStore struct {
	s *Store
}

func (m *LibraryStore) Create(_ context.Context, userID uuid.UUID, content string, msgType models.MessageType, originalSenderName *string) (*models.LibraryEntry, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var sender *string
	if originalSenderName != nil {
		name := *originalSenderName
		sender = &name
	}

	row := &libraryRow{
		entry: models.LibraryEntry{
			ID:                 uuid.New(),
			UserID:             userID,
			MessageContent:     content,
			MessageType:        msgType,
			OriginalSenderName: sender,
			SavedAt:            m.s.now(),
		},
		seq: m.s.nextSeq(),
	}
	m.s.library[row.entry.ID] = row

	out := row.entry
	return &out, nil
}

func (m *LibraryStore) GetByID(_ context.Context, id uuid.UUID) (*models.LibraryEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	row, ok := m.s.library[id]
	if !ok {
		return nil, nil
	}
	out := row.entry
	return &out, nil
}

func (m *LibraryStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.library[id]; !ok {
		return false, nil
	}
	delete(m.s.library, id)
	return true, nil
}

func (m *LibraryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.LibraryEntry, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := make([]*libraryRow, 0)
	for _, row := range m.s.library {
		if row.entry.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].entry.SavedAt.Equal(rows[j].entry.SavedAt) {
			return rows[i].entry.SavedAt.After(rows[j].entry.SavedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	entries := make([]models.LibraryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry)
	}
	return entries, nil
}

func (m *LibraryStore) CountByType(_ context.Context, userID uuid.UUID) (models.TypeCounts, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var counts models.TypeCounts
	for _, row := range m.s.library {
		if row.entry.UserID != userID {
			continue
		}
		switch row.entry.MessageType {
		case models.MessageTypeThanks:
			counts.Thanks++
		case models.MessageTypeHonesty:
			counts.Honesty++
		}
	}
	return counts, nil
}
