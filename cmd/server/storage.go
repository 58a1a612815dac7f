package main

import (
	"context"
	"fmt"

	"github.com/lalith-99/heartfelt/internal/api"
	"github.com/lalith-99/heartfelt/internal/config"
	"github.com/lalith-99/heartfelt/internal/db"
	"github.com/lalith-99/heartfelt/internal/repository"
	"github.com/lalith-99/heartfelt/internal/repository/memory"
	"github.com/lalith-99/heartfelt/internal/repository/postgres"
	"go.uber.org/zap"
)

// repositories is the storage backend selected by STORAGE. Services only
// see the interfaces.
type repositories struct {
	messages repository.MessageRepository
	goals    repository.GoalRepository
	users    repository.UserRepository
	library  repository.LibraryRepository
	slack    repository.SlackSettingsRepository

	motivations repository.MotivationRepository

	// pinger is nil for in-memory storage.
	pinger api.Pinger
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.New()
		return &repositories{
			messages: store.Messages(),
			goals:    store.Goals(),
			users:    store.Users(),
			library:  store.Library(),
			slack:    store.SlackSettings(),
			close:    func() {},

			motivations: store.Motivations(),
		}, nil
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL, db.Up, logger); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Every store shares the pool; pgxpool is safe for concurrent use.
	pool := database.Pool()
	return &repositories{
		messages: postgres.NewMessageStore(pool),
		goals:    postgres.NewGoalStore(pool),
		users:    postgres.NewUserStore(pool),
		library:  postgres.NewLibraryStore(pool),
		slack:    postgres.NewSlackSettingsStore(pool),
		pinger:   database,
		close:    database.Close,

		motivations: postgres.NewMotivationStore(pool),
	}, nil
}
