package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/models"
)

type userRow struct {
	user models.User
	seq  int64
}

type UserStore struct {
	s *Store
}

func (m *UserStore) Create(_ context.Context, email, name, department, passwordHash string) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, row := range m.s.users {
		if strings.EqualFold(row.user.Email, email) {
			return nil, &apperr.Error{Kind: apperr.ErrInvalidState, Message: "conflicting record"}
		}
	}

	row := &userRow{
		user: models.User{
			ID:           uuid.New(),
			Email:        email,
			Name:         name,
			Department:   department,
			PasswordHash: passwordHash,
			CreatedAt:    m.s.now(),
		},
		seq: m.s.nextSeq(),
	}
	m.s.users[row.user.ID] = row

	out := row.user
	return &out, nil
}

func (m *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	row, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	out := row.user
	return &out, nil
}

func (m *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, row := range m.s.users {
		if strings.EqualFold(row.user.Email, email) {
			out := row.user
			return &out, nil
		}
	}
	return nil, nil
}

func (m *UserStore) List(_ context.Context) ([]models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := make([]*userRow, 0, len(m.s.users))
	for _, row := range m.s.users {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user)
	}
	return users, nil
}

func (m *UserStore) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	row, ok := m.s.users[id]
	if !ok {
		return nil, nil
	}
	if upd.Name != nil {
		row.user.Name = *upd.Name
	}
	if upd.Department != nil {
		row.user.Department = *upd.Department
	}
	if upd.AvatarURL != nil {
		row.user.AvatarURL = *upd.AvatarURL
	}
	if upd.LineUserID != nil {
		row.user.LineUserID = *upd.LineUserID
	}
	out := row.user
	return &out, nil
}

// displayNameLocked must be called with mu held.
func (s *Store) displayNameLocked(id uuid.UUID) string {
	row, ok := s.users[id]
	if !ok {
		return models.DisplayName("", "")
	}
	return row.user.DisplayName()
}
