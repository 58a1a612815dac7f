package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/models"
)

type motivationRow struct {
	motivation models.Motivation
	seq        int64
}

type MotivationStore struct {
	s *Store
}

func (m *MotivationStore) Upsert(_ context.Context, userID uuid.UUID, content string) (*models.Motivation, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[userID]; !ok {
		return nil, apperr.Validation("referenced user does not exist")
	}

	now := m.s.now()
	for _, row := range m.s.motivations {
		if row.motivation.UserID == userID {
			row.motivation.Content = content
			row.motivation.UpdatedAt = now
			row.seq = m.s.nextSeq()
			return m.viewLocked(row), nil
		}
	}

	row := &motivationRow{
		motivation: models.Motivation{
			ID:        uuid.New(),
			UserID:    userID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		},
		seq: m.s.nextSeq(),
	}
	m.s.motivations[row.motivation.ID] = row
	return m.viewLocked(row), nil
}

func (m *MotivationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Motivation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	row, ok := m.s.motivations[id]
	if !ok {
		return nil, nil
	}
	return m.viewLocked(row), nil
}

func (m *MotivationStore) GetByUser(_ context.Context, userID uuid.UUID) (*models.Motivation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, row := range m.s.motivations {
		if row.motivation.UserID == userID {
			return m.viewLocked(row), nil
		}
	}
	return nil, nil
}

func (m *MotivationStore) List(_ context.Context) ([]models.Motivation, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := make([]*motivationRow, 0, len(m.s.motivations))
	for _, row := range m.s.motivations {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].motivation.UpdatedAt.Equal(rows[j].motivation.UpdatedAt) {
			return rows[i].motivation.UpdatedAt.After(rows[j].motivation.UpdatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]models.Motivation, 0, len(rows))
	for _, row := range rows {
		out = append(out, *m.viewLocked(row))
	}
	return out, nil
}

func (m *MotivationStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.motivations[id]; !ok {
		return false, nil
	}
	delete(m.s.motivations, id)
	return true, nil
}

// viewLocked must be called with mu held.
func (m *MotivationStore) viewLocked(row *motivationRow) *models.Motivation {
	out := row.motivation
	out.UserName = m.s.displayNameLocked(out.UserID)
	return &out
}
