package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

const messageColumns = `id, sender_id, recipient_id, type, content, is_read, created_at, updated_at`

func scanMessage(row scanner, msg *models.Message) error {
	var msgType string
	if err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.RecipientID,
		&msgType,
		&msg.Content,
		&msg.IsRead,
		&msg.CreatedAt,
		&msg.UpdatedAt,
	); err != nil {
		return err
	}
	msg.Type = models.MessageType(msgType)
	return nil
}

func (s *MessageStore) Create(ctx context.Context, senderID, recipientID uuid.UUID, msgType models.MessageType, content string) (*models.Message, error) {
	// created_at comes from the database clock so every writer shares one
	// ordering for progress windows.
	query := `
		INSERT INTO messages (sender_id, recipient_id, type, content, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, false, now(), now())
		RETURNING ` + messageColumns

	var msg models.Message
	if err := scanMessage(s.pool.QueryRow(ctx, query, senderID, recipientID, string(msgType), content), &msg); err != nil {
		return nil, wrapErr("insert message", err)
	}
	return &msg, nil
}

func (s *MessageStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var msg models.Message
	if err := scanMessage(s.pool.QueryRow(ctx, query, id), &msg); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get message", err)
	}
	return &msg, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, id uuid.UUID) (bool, error) {
	// The is_read guard makes a repeat call a no-op that leaves updated_at alone.
	query := `
		UPDATE messages
		SET is_read = true, updated_at = now()
		WHERE id = $1 AND NOT is_read`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return false, wrapErr("mark message read", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *MessageStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return false, wrapErr("delete message", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *MessageStore) ListReceived(ctx context.Context, recipientID uuid.UUID) ([]models.MessageView, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.type, m.content, m.is_read, m.created_at, m.updated_at,
		       COALESCE(su.name, ''), COALESCE(su.email, ''),
		       COALESCE(ru.name, ''), COALESCE(ru.email, '')
		FROM messages m
		LEFT JOIN users su ON su.id = m.sender_id
		LEFT JOIN users ru ON ru.id = m.recipient_id
		WHERE m.recipient_id = $1
		ORDER BY m.created_at DESC, m.id DESC`

	return s.listViews(ctx, "list received messages", query, recipientID)
}

func (s *MessageStore) ListSent(ctx context.Context, senderID uuid.UUID) ([]models.MessageView, error) {
	query := `
		SELECT m.id, m.sender_id, m.recipient_id, m.type, m.content, m.is_read, m.created_at, m.updated_at,
		       COALESCE(su.name, ''), COALESCE(su.email, ''),
		       COALESCE(ru.name, ''), COALESCE(ru.email, '')
		FROM messages m
		LEFT JOIN users su ON su.id = m.sender_id
		LEFT JOIN users ru ON ru.id = m.recipient_id
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC, m.id DESC`

	return s.listViews(ctx, "list sent messages", query, senderID)
}

func (s *MessageStore) listViews(ctx context.Context, op, query string, userID uuid.UUID) ([]models.MessageView, error) {
	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	views := make([]models.MessageView, 0)
	for rows.Next() {
		var (
			v                       models.MessageView
			msgType                 string
			senderName, senderEmail string
			recipName, recipEmail   string
		)
		if err := rows.Scan(
			&v.ID,
			&v.SenderID,
			&v.RecipientID,
			&msgType,
			&v.Content,
			&v.IsRead,
			&v.CreatedAt,
			&v.UpdatedAt,
			&senderName,
			&senderEmail,
			&recipName,
			&recipEmail,
		); err != nil {
			return nil, wrapErr("scan message", err)
		}
		v.Type = models.MessageType(msgType)
		v.SenderName = models.DisplayName(senderName, senderEmail)
		v.RecipientName = models.DisplayName(recipName, recipEmail)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("iterate messages", err)
	}

	return views, nil
}

func (s *MessageStore) CountByTypeSince(ctx context.Context, since time.Time) (models.TypeCounts, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE type = 'thanks'),
		       COUNT(*) FILTER (WHERE type = 'honesty')
		FROM messages
		WHERE created_at >= $1`

	var thanks, honesty int64
	if err := s.pool.QueryRow(ctx, query, since).Scan(&thanks, &honesty); err != nil {
		return models.TypeCounts{}, wrapErr("count messages", err)
	}
	return models.TypeCounts{Thanks: int(thanks), Honesty: int(honesty)}, nil
}
