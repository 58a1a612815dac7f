package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, email, name, department, avatar_url, line_user_id, password_hash, created_at`

func scanUser(row scanner, u *models.User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Department,
		&u.AvatarURL,
		&u.LineUserID,
		&u.PasswordHash,
		&u.CreatedAt,
	)
}

// Create inserts a new user row. Postgres generates the UUID and timestamp.
func (s *UserStore) Create(ctx context.Context, email, name, department, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (email, name, department, password_hash, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING ` + userColumns

	var u models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, email, name, department, passwordHash), &u); err != nil {
		return nil, wrapErr("insert user", err)
	}
	return &u, nil
}

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get user", err)
	}
	return &u, nil
}

// GetByEmail looks up a user by email, case-insensitively.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	var u models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get user by email", err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, wrapErr("list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, wrapErr("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate users", err)
	}

	return users, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	// COALESCE keeps the current value for every field the caller left nil.
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    department = COALESCE($3, department),
		    avatar_url = COALESCE($4, avatar_url),
		    line_user_id = COALESCE($5, line_user_id)
		WHERE id = $1
		RETURNING ` + userColumns

	var u models.User
	err := scanUser(s.pool.QueryRow(ctx, query, id, upd.Name, upd.Department, upd.AvatarURL, upd.LineUserID), &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("update profile", err)
	}
	return &u, nil
}
