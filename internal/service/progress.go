package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/lalith-99/heartfelt/internal/apperr"
	"github.com/lalith-99/heartfelt/internal/cache"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/repository"
	"go.uber.org/zap"
)

// ProgressService derives the team's standing toward the active goal. It
// owns no state; the counts may be served from a cache that writers
// invalidate.
type ProgressService struct {
	goals    repository.GoalRepository
	messages repository.MessageRepository
	cache    cache.ProgressCache
	logger   *zap.Logger
}

func NewProgressService(goals repository.GoalRepository, messages repository.MessageRepository, progressCache cache.ProgressCache, logger *zap.Logger) *ProgressService {
	if progressCache == nil {
		progressCache = cache.NopCache{}
	}
	return &ProgressService{goals: goals, messages: messages, cache: progressCache, logger: logger}
}

// Current returns progress toward the active goal. With no active goal,
// or when the backend is unavailable, the counts are zero.
func (s *ProgressService) Current(ctx context.Context) (models.Progress, error) {
	goal, err := s.goals.GetActive(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrBackendUnavailable) {
			s.logger.Warn("progress degraded to zero: active goal unavailable", zap.Error(err))
			return Compute(nil, models.TypeCounts{}), nil
		}
		return models.Progress{}, fmt.Errorf("get active goal: %w", err)
	}
	if goal == nil {
		return Compute(nil, models.TypeCounts{}), nil
	}

	counts, ok := s.cache.Get(ctx, goal.ID)
	if !ok {
		// The generation is read before counting so a write that lands
		// while we count makes the fill below a no-op.
		gen, genOK := s.cache.Generation(ctx)
		counts, err = s.messages.CountByTypeSince(ctx, goal.StartDate)
		if err != nil {
			if errors.Is(err, apperr.ErrBackendUnavailable) {
				s.logger.Warn("progress degraded to zero: counts unavailable", zap.Error(err))
				return Compute(goal, models.TypeCounts{}), nil
			}
			return models.Progress{}, fmt.Errorf("count messages: %w", err)
		}
		if genOK {
			s.cache.Set(ctx, goal.ID, gen, counts)
		}
	}

	return Compute(goal, counts), nil
}

// Compute is the progress arithmetic. A nil goal yields all-zero progress.
// The percentage is capped at 100 and is 0 when no points are required.
func Compute(goal *models.RewardGoal, counts models.TypeCounts) models.Progress {
	if goal == nil {
		return models.Progress{}
	}

	total := counts.Total()
	required := goal.RequiredPoints

	var pct float64
	if required > 0 {
		pct = math.Min(float64(total)*100/float64(required), 100)
	}

	return models.Progress{
		Goal:            goal,
		ThanksPoints:    counts.Thanks,
		HonestyPoints:   counts.Honesty,
		TotalPoints:     total,
		RequiredPoints:  required,
		RemainingPoints: max(required-total, 0),
		Percentage:      pct,
		IsAchieved:      required > 0 && total >= required,
	}
}
