package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/db"
	"github.com/lalith-99/heartfelt/internal/growth"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/observ"
	"github.com/lalith-99/heartfelt/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds the global flags and the seams tests replace.
type app struct {
	databaseURL string
	logLevel    string

	open    func(ctx context.Context, a *app) (stores, func(), error)
	migrate func(databaseURL string, dir db.Direction, logger *zap.Logger) error
}

func (a *app) logger() *zap.Logger {
	logger, err := observ.NewLogger("development", a.logLevel)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// withServices opens storage, runs fn and closes storage again.
func (a *app) withServices(cmd *cobra.Command, fn func(goals *service.GoalService, progress *service.ProgressService) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	s, closeFn, err := a.open(ctx, a)
	if err != nil {
		return err
	}
	defer closeFn()

	logger := a.logger()
	goals := service.NewGoalService(s.goals, nil, nil, logger)
	progress := service.NewProgressService(s.goals, s.messages, nil, logger)
	cmd.SetContext(ctx)
	return fn(goals, progress)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "heartfeltctl",
		Short:        "Administer a Heartfelt deployment",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.databaseURL, "database-url", a.databaseURL, "Postgres connection URL (default $DATABASE_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", a.logLevel, "Log level: debug, info, warn, error")

	root.AddCommand(newMigrateCmd(a), newGoalCmd(a), newProgressCmd(a))
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	for _, dir := range []db.Direction{db.Up, db.Down} {
		dir := dir
		cmd.AddCommand(&cobra.Command{
			Use:   string(dir),
			Short: fmt.Sprintf("Run every %s migration", dir),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if a.databaseURL == "" {
					return fmt.Errorf("DATABASE_URL is not set (use --database-url)")
				}
				if err := a.migrate(a.databaseURL, dir, a.logger()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrations %s: done\n", dir)
				return nil
			},
		})
	}
	return cmd
}

func newGoalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage reward goals",
	}

	var name string
	var points int
	create := &cobra.Command{
		Use:   "create",
		Short: "Replace the active goal with a new one starting now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd, func(goals *service.GoalService, _ *service.ProgressService) error {
				g, err := goals.CreateNew(cmd.Context(), name, points)
				if err != nil {
					return err
				}
				printGoal(cmd.OutOrStdout(), g)
				return nil
			})
		},
	}
	create.Flags().StringVar(&name, "name", service.DefaultGoalName, "Goal name")
	create.Flags().IntVar(&points, "points", service.DefaultGoalPoints, "Points required to reach the goal")

	achieve := &cobra.Command{
		Use:   "achieve <goal-id>",
		Short: "Mark the active goal achieved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid goal id %q", args[0])
			}
			return a.withServices(cmd, func(goals *service.GoalService, _ *service.ProgressService) error {
				g, err := goals.MarkAchieved(cmd.Context(), id)
				if err != nil {
					return err
				}
				printGoal(cmd.OutOrStdout(), g)
				return nil
			})
		},
	}

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List past and current goals, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd, func(goals *service.GoalService, _ *service.ProgressService) error {
				list, err := goals.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no goals")
					return nil
				}
				for i := range list {
					printGoal(cmd.OutOrStdout(), &list[i])
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", service.DefaultHistoryLimit, "Maximum goals to list (1-100)")

	cmd.AddCommand(create, achieve, history)
	return cmd
}

func newProgressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show team progress toward the active goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withServices(cmd, func(_ *service.GoalService, progress *service.ProgressService) error {
				p, err := progress.Current(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if p.Goal == nil {
					fmt.Fprintln(out, "no active goal")
					return nil
				}
				stage := growth.StageFor(p.TotalPoints, p.Percentage)
				fmt.Fprintf(out, "%s %s: %d/%d points (%.0f%%), %d to go\n",
					stage.Icon, p.Goal.Name, p.TotalPoints, p.RequiredPoints, p.Percentage, p.RemainingPoints)
				fmt.Fprintf(out, "thanks %d, honesty %d\n", p.ThanksPoints, p.HonestyPoints)
				if p.IsAchieved {
					fmt.Fprintln(out, "goal reached!")
				}
				return nil
			})
		},
	}
}

func printGoal(w io.Writer, g *models.RewardGoal) {
	status := "inactive"
	switch {
	case g.AchievedDate != nil:
		status = "achieved " + g.AchievedDate.Format("2006-01-02")
	case g.IsActive:
		status = "active"
	}
	fmt.Fprintf(w, "%s  %-24s %4d pts  started %s  %s\n",
		g.ID, g.Name, g.RequiredPoints, g.StartDate.Format("2006-01-02"), status)
}
