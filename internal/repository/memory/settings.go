package memory

import (
	"context"

	"github.com/lalith-99/heartfelt/internal/models"
)

type slackRow struct {
	settings models.SlackSettings
}

type SlackStore struct {
	s *Store
}

func (m *SlackStore) Get(_ context.Context) (*models.SlackSettings, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	if m.s.slack == nil {
		return nil, nil
	}
	out := m.s.slack.settings
	return &out, nil
}

func (m *SlackStore) Save(_ context.Context, settings models.SlackSettings) (*models.SlackSettings, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	settings.UpdatedAt = m.s.now()
	m.s.slack = &slackRow{settings: settings}

	out := settings
	return &out, nil
}
