// Command heartfeltctl is the operator CLI: schema migrations and goal
// administration against the same database the server uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/lalith-99/heartfelt/internal/config"
	"github.com/lalith-99/heartfelt/internal/db"
	"github.com/lalith-99/heartfelt/internal/observ"
	"github.com/lalith-99/heartfelt/internal/repository"
	"github.com/lalith-99/heartfelt/internal/repository/postgres"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Error: load .env:", err)
		os.Exit(1)
	}

	a := &app{
		databaseURL: config.GetEnv("DATABASE_URL", ""),
		logLevel:    config.GetEnv("LOG_LEVEL", "warn"),
		open:        openPostgres,
		migrate:     db.Migrate,
	}
	if err := newRootCmd(a).Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func openPostgres(ctx context.Context, a *app) (stores, func(), error) {
	if a.databaseURL == "" {
		return stores{}, nil, errors.New("DATABASE_URL is not set (use --database-url)")
	}
	logger, err := observ.NewLogger("development", a.logLevel)
	if err != nil {
		return stores{}, nil, err
	}
	database, err := db.New(ctx, a.databaseURL, logger)
	if err != nil {
		return stores{}, nil, fmt.Errorf("connect to database: %w", err)
	}
	pool := database.Pool()
	return stores{
		goals:    postgres.NewGoalStore(pool),
		messages: postgres.NewMessageStore(pool),
	}, database.Close, nil
}

type stores struct {
	goals    repository.GoalRepository
	messages repository.MessageRepository
}
