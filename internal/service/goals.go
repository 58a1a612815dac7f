package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/cache"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

const (
	DefaultGoalName   = "Cafe time"
	DefaultGoalPoints = 30

	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

type GoalService struct {
	goals  repository.GoalRepository
	cache  cache.ProgressCache
	feed   Feed
	logger *zap.Logger
}

func NewGoalService(goals repository.GoalRepository, progressCache cache.ProgressCache, feed Feed, logger *zap.Logger) *GoalService {
	if progressCache == nil {
		progressCache = cache.NopCache{}
	}
	if feed == nil {
		feed = nopFeed{}
	}
	return &GoalService{goals: goals, cache: progressCache, feed: feed, logger: logger}
}

// Active returns the active goal, or nil when there is none.
func (s *GoalService) Active(ctx context.Context) (*models.RewardGoal, error) {
	goal, err := s.goals.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active goal: %w", err)
	}
	return goal, nil
}

// CreateNew replaces the active goal with a new one starting now. Progress
// restarts from zero because only messages after the start count.
func (s *GoalService) CreateNew(ctx context.Context, name string, requiredPoints int) (*models.RewardGoal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("goal name is required")
	}
	if requiredPoints <= 0 {
		return nil, apperr.Validation("required points must be positive")
	}

	goal, err := s.goals.ReplaceActive(ctx, name, requiredPoints)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}

	s.cache.Invalidate(ctx)
	s.feed.Broadcast(realtime.Event{Type: realtime.EventGoalChanged, Payload: goal})
	s.logger.Info("goal created",
		zap.Stringer("goal_id", goal.ID),
		zap.String("name", goal.Name),
		zap.Int("required_points", goal.RequiredPoints),
	)
	return goal, nil
}

// MarkAchieved closes the active goal. Achieving a goal that is already
// inactive or achieved is an InvalidState error.
func (s *GoalService) MarkAchieved(ctx context.Context, goalID uuid.UUID) (*models.RewardGoal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	if goal == nil {
		return nil, apperr.NotFound("goal not found")
	}
	if !goal.IsActive || goal.AchievedDate != nil {
		return nil, apperr.InvalidState("goal is no longer active")
	}

	updated, err := s.goals.MarkAchieved(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("mark goal achieved: %w", err)
	}
	// Lost a race with another achieve or a replacement.
	if updated == nil {
		return nil, apperr.InvalidState("goal is no longer active")
	}

	s.cache.Invalidate(ctx)
	s.feed.Broadcast(realtime.Event{Type: realtime.EventGoalChanged, Payload: updated})
	s.logger.Info("goal achieved", zap.Stringer("goal_id", updated.ID), zap.String("name", updated.Name))
	return updated, nil
}

// ClampHistoryLimit maps a requested page size into [1, MaxHistoryLimit],
// treating anything non-positive as DefaultHistoryLimit.
func ClampHistoryLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// History returns recent goals, newest first.
func (s *GoalService) History(ctx context.Context, limit int) ([]models.RewardGoal, error) {
	goals, err := s.goals.History(ctx, ClampHistoryLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("goal history: %w", err)
	}
	if goals == nil {
		goals = []models.RewardGoal{}
	}
	return goals, nil
}

// EnsureDefault creates the default goal when no goal has ever existed.
// Reports whether it created one.
func (s *GoalService) EnsureDefault(ctx context.Context) (bool, error) {
	n, err := s.goals.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count goals: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if _, err := s.CreateNew(ctx, DefaultGoalName, DefaultGoalPoints); err != nil {
		return false, err
	}
	return true, nil
}
