package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

type MotivationStore struct {
	pool *pgxpool.Pool
}

func NewMotivationStore(pool *pgxpool.Pool) *MotivationStore {
	return &MotivationStore{pool: pool}
}

// The author's name is joined at read time so a profile rename shows up
// on their motivation too.
const motivationSelect = `
	SELECT m.id, m.user_id, m.content, m.created_at, m.updated_at,
	       COALESCE(u.name, ''), COALESCE(u.email, '')
	FROM motivations m
	LEFT JOIN users u ON u.id = m.user_id`

func scanMotivation(row scanner, m *models.Motivation) error {
	var name, email string
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Content,
		&m.CreatedAt,
		&m.UpdatedAt,
		&name,
		&email,
	); err != nil {
		return err
	}
	m.UserName = models.DisplayName(name, email)
	return nil
}

func (s *MotivationStore) Upsert(ctx context.Context, userID uuid.UUID, content string) (*models.Motivation, error) {
	query := `
		WITH m AS (
			INSERT INTO motivations (user_id, content, created_at, updated_at)
			VALUES ($1, $2, now(), now())
			ON CONFLICT (user_id) DO UPDATE
			SET content = EXCLUDED.content,
			    updated_at = EXCLUDED.updated_at
			RETURNING id, user_id, content, created_at, updated_at
		)
		SELECT m.id, m.user_id, m.content, m.created_at, m.updated_at,
		       COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM m
		LEFT JOIN users u ON u.id = m.user_id`

	var m models.Motivation
	if err := scanMotivation(s.pool.QueryRow(ctx, query, userID, content), &m); err != nil {
		return nil, wrapErr("upsert motivation", err)
	}
	return &m, nil
}

func (s *MotivationStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Motivation, error) {
	return s.getOne(ctx, "get motivation", motivationSelect+` WHERE m.id = $1`, id)
}

func (s *MotivationStore) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Motivation, error) {
	return s.getOne(ctx, "get user motivation", motivationSelect+` WHERE m.user_id = $1`, userID)
}

func (s *MotivationStore) getOne(ctx context.Context, op, query string, arg uuid.UUID) (*models.Motivation, error) {
	var m models.Motivation
	if err := scanMotivation(s.pool.QueryRow(ctx, query, arg), &m); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return &m, nil
}

func (s *MotivationStore) List(ctx context.Context) ([]models.Motivation, error) {
	rows, err := s.pool.Query(ctx, motivationSelect+` ORDER BY m.updated_at DESC, m.id DESC`)
	if err != nil {
		return nil, wrapErr("list motivations", err)
	}
	defer rows.Close()

	motivations := make([]models.Motivation, 0)
	for rows.Next() {
		var m models.Motivation
		if err := scanMotivation(rows, &m); err != nil {
			return nil, wrapErr("scan motivation", err)
		}
		motivations = append(motivations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate motivations", err)
	}

	return motivations, nil
}

func (s *MotivationStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM motivations WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete motivation", err)
	}
	return tag.RowsAffected() == 1, nil
}
