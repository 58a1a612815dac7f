package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

// goalSwapLockKey is the pg_advisory_xact_lock key taken by every goal swap.
//
// Why an advisory lock rather than SELECT ... FOR UPDATE on the active row?
//   - With no active goal there is no row to lock, and two first-time swaps
//     would both insert. The advisory lock exists whether or not a row does.
//   - The _xact_ variant is released at COMMIT or ROLLBACK, so a crashed
//     handler cannot leave it held.
const goalSwapLockKey int64 = 0x6865617274 // "heart"

type GoalStore struct {
	pool *pgxpool.Pool
}

func NewGoalStore(pool *pgxpool.Pool) *GoalStore {
	return &GoalStore{pool: pool}
}

const goalColumns = `id, name, required_points, start_date, achieved_date, is_active, created_at`

func scanGoal(row scanner, g *models.RewardGoal) error {
	return row.Scan(
		&g.ID,
		&g.Name,
		&g.RequiredPoints,
		&g.StartDate,
		&g.AchievedDate,
		&g.IsActive,
		&g.CreatedAt,
	)
}

func (s *GoalStore) GetActive(ctx context.Context) (*models.RewardGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM reward_goals WHERE is_active`

	var g models.RewardGoal
	if err := scanGoal(s.pool.QueryRow(ctx, query), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get active goal", err)
	}
	return &g, nil
}

func (s *GoalStore) GetByID(ctx context.Context, id uuid.UUID) (*models.RewardGoal, error) {
	query := `SELECT ` + goalColumns + ` FROM reward_goals WHERE id = $1`

	var g models.RewardGoal
	if err := scanGoal(s.pool.QueryRow(ctx, query, id), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get goal", err)
	}
	return &g, nil
}

// ReplaceActive runs deactivate-then-insert in one transaction.
//
// The advisory lock serialises concurrent swaps so the second writer sees
// the first one's new goal and deactivates it. The partial unique index on
// is_active backs this up: a second active row cannot be committed.
// Readers see either the old goal or the new one, never both or neither,
// because both changes become visible at commit.
func (s *GoalStore) ReplaceActive(ctx context.Context, name string, requiredPoints int) (*models.RewardGoal, error) {
	var g models.RewardGoal

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, goalSwapLockKey); err != nil {
			return wrapErr("lock goal swap", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE reward_goals SET is_active = false WHERE is_active`); err != nil {
			return wrapErr("deactivate goal", err)
		}

		// now() is frozen at transaction start, which can be before the lock
		// was granted. clock_timestamp() is read after it, so the goal that
		// ends up active always has the latest start_date.
		query := `
			WITH t AS (SELECT clock_timestamp() AS ts)
			INSERT INTO reward_goals (name, required_points, start_date, achieved_date, is_active, created_at)
			SELECT $1, $2, t.ts, NULL, true, t.ts FROM t
			RETURNING ` + goalColumns
		if err := scanGoal(tx.QueryRow(ctx, query, name, requiredPoints), &g); err != nil {
			return wrapErr("insert goal", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GoalStore) MarkAchieved(ctx context.Context, id uuid.UUID) (*models.RewardGoal, error) {
	query := `
		UPDATE reward_goals
		SET achieved_date = now(), is_active = false
		WHERE id = $1 AND is_active AND achieved_date IS NULL
		RETURNING ` + goalColumns

	var g models.RewardGoal
	if err := scanGoal(s.pool.QueryRow(ctx, query, id), &g); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("mark goal achieved", err)
	}
	return &g, nil
}

func (s *GoalStore) History(ctx context.Context, limit int) ([]models.RewardGoal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM reward_goals
		ORDER BY start_date DESC, created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, wrapErr("list goals", err)
	}
	defer rows.Close()

	goals := make([]models.RewardGoal, 0)
	for rows.Next() {
		var g models.RewardGoal
		if err := scanGoal(rows, &g); err != nil {
			return nil, wrapErr("scan goal", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate goals", err)
	}

	return goals, nil
}

func (s *GoalStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reward_goals`).Scan(&n); err != nil {
		return 0, wrapErr("count goals", err)
	}
	return int(n), nil
}
