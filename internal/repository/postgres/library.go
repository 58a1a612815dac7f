package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

type LibraryStore struct {
	pool *pgxpool.Pool
}

func NewLibraryStore(pool *pgxpool.Pool) *LibraryStore {
	return &LibraryStore{pool: pool}
}

const libraryColumns = `id, user_id, message_content, message_type, original_sender_name, saved_at`

func scanLibraryEntry(row scanner, e *models.LibraryEntry) error {
	var msgType string
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.MessageContent,
		&msgType,
		&e.OriginalSenderName,
		&e.SavedAt,
	); err != nil {
		return err
	}
	e.MessageType = models.MessageType(msgType)
	return nil
}

func (s *LibraryStore) Create(ctx context.Context, userID uuid.UUID, content string, msgType models.MessageType, originalSenderName *string) (*models.LibraryEntry, error) {
	query := `
		INSERT INTO word_library (user_id, message_content, message_type, original_sender_name, saved_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING ` + libraryColumns

	var e models.LibraryEntry
	row := s.pool.QueryRow(ctx, query, userID, content, string(msgType), originalSenderName)
	if err := scanLibraryEntry(row, &e); err != nil {
		return nil, wrapErr("insert library entry", err)
	}
	return &e, nil
}

func (s *LibraryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.LibraryEntry, error) {
	query := `SELECT ` + libraryColumns + ` FROM word_library WHERE id = $1`

	var e models.LibraryEntry
	if err := scanLibraryEntry(s.pool.QueryRow(ctx, query, id), &e); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get library entry", err)
	}
	return &e, nil
}

func (s *LibraryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM word_library WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete library entry", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *LibraryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.LibraryEntry, error) {
	query := `
		SELECT ` + libraryColumns + `
		FROM word_library
		WHERE user_id = $1
		ORDER BY saved_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("list library", err)
	}
	defer rows.Close()

	entries := make([]models.LibraryEntry, 0)
	for rows.Next() {
		var e models.LibraryEntry
		if err := scanLibraryEntry(rows, &e); err != nil {
			return nil, wrapErr("scan library entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate library", err)
	}

	return entries, nil
}

func (s *LibraryStore) CountByType(ctx context.Context, userID uuid.UUID) (models.TypeCounts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE message_type = 'thanks'),
		       COUNT(*) FILTER (WHERE message_type = 'honesty')
		FROM word_library
		WHERE user_id = $1`

	var thanks, honesty int64
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&thanks, &honesty); err != nil {
		return models.TypeCounts{}, wrapErr("count library", err)
	}
	return models.TypeCounts{Thanks: int(thanks), Honesty: int(honesty)}, nil
}
