package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/heartfelt/internal/models"
)

// SlackSettingsStore keeps the single slack_settings row (id = 1).
type SlackSettingsStore struct {
	pool *pgxpool.Pool
}

func NewSlackSettingsStore(pool *pgxpool.Pool) *SlackSettingsStore {
	return &SlackSettingsStore{pool: pool}
}

func (s *SlackSettingsStore) Get(ctx context.Context) (*models.SlackSettings, error) {
	query := `
		SELECT webhook_url, channel, is_enabled, updated_at
		FROM slack_settings
		WHERE id = 1`

	var st models.SlackSettings
	err := s.pool.QueryRow(ctx, query).Scan(&st.WebhookURL, &st.Channel, &st.IsEnabled, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get slack settings", err)
	}
	return &st, nil
}

func (s *SlackSettingsStore) Save(ctx context.Context, settings models.SlackSettings) (*models.SlackSettings, error) {
	query := `
		INSERT INTO slack_settings (id, webhook_url, channel, is_enabled, updated_at)
		VALUES (1, $1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET webhook_url = EXCLUDED.webhook_url,
		    channel = EXCLUDED.channel,
		    is_enabled = EXCLUDED.is_enabled,
		    updated_at = EXCLUDED.updated_at
		RETURNING webhook_url, channel, is_enabled, updated_at`

	var st models.SlackSettings
	err := s.pool.QueryRow(ctx, query, settings.WebhookURL, settings.Channel, settings.IsEnabled).
		Scan(&st.WebhookURL, &st.Channel, &st.IsEnabled, &st.UpdatedAt)
	if err != nil {
		return nil, wrapErr("save slack settings", err)
	}
	return &st, nil
}
