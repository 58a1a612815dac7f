package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
)

type goalRow struct {
	goal models.RewardGoal
	seq  int64
}

type GoalStore struct {
	s *Store
}

func copyGoal(g models.RewardGoal) *models.RewardGoal {
	if g.AchievedDate != nil {
		at := *g.AchievedDate
		g.AchievedDate = &at
	}
	return &g
}

func (m *GoalStore) GetActive(_ context.Context) (*models.RewardGoal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, row := range m.s.goals {
		if row.goal.IsActive {
			return copyGoal(row.goal), nil
		}
	}
	return nil, nil
}

func (m *GoalStore) GetByID(_ context.Context, id uuid.UUID) (*models.RewardGoal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	row, ok := m.s.goals[id]
	if !ok {
		return nil, nil
	}
	return copyGoal(row.goal), nil
}

func (m *GoalStore) ReplaceActive(_ context.Context, name string, requiredPoints int) (*models.RewardGoal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for _, row := range m.s.goals {
		row.goal.IsActive = false
	}

	now := m.s.now()
	row := &goalRow{
		goal: models.RewardGoal{
			ID:             uuid.New(),
			Name:           name,
			RequiredPoints: requiredPoints,
			StartDate:      now,
			IsActive:       true,
			CreatedAt:      now,
		},
		seq: m.s.nextSeq(),
	}
	m.s.goals[row.goal.ID] = row
	return copyGoal(row.goal), nil
}

func (m *GoalStore) MarkAchieved(_ context.Context, id uuid.UUID) (*models.RewardGoal, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	row, ok := m.s.goals[id]
	if !ok || !row.goal.IsActive || row.goal.AchievedDate != nil {
		return nil, nil
	}
	now := m.s.now()
	row.goal.AchievedDate = &now
	row.goal.IsActive = false
	return copyGoal(row.goal), nil
}

func (m *GoalStore) History(_ context.Context, limit int) ([]models.RewardGoal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	rows := make([]*goalRow, 0, len(m.s.goals))
	for _, row := range m.s.goals {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].goal.StartDate.Equal(rows[j].goal.StartDate) {
			return rows[i].goal.StartDate.After(rows[j].goal.StartDate)
		}
		return rows[i].seq > rows[j].seq
	})
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	goals := make([]models.RewardGoal, 0, len(rows))
	for _, row := range rows {
		goals = append(goals, *copyGoal(row.goal))
	}
	return goals, nil
}

func (m *GoalStore) Count(_ context.Context) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return len(m.s.goals), nil
}

// ActiveCount returns how many goals are flagged active. Used by tests to
// check the single-active invariant directly.
func (m *GoalStore) ActiveCount() int {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	n := 0
	for _, row := range m.s.goals {
		if row.goal.IsActive {
			n++
		}
	}
	return n
}
