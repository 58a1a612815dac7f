// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/models"
	"github.com/lalith-99/heartfelt/internal/realtime"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ProgressSource reports the current standing toward the active goal.
type ProgressSource interface {
	Current(ctx context.Context) (models.Progress, error)
}

// Announcer posts free-form text to the team channel.
type Announcer interface {
	Announce(ctx context.Context, text string) error
}

// Broadcaster pushes an event to every connected client.
type Broadcaster interface {
	Broadcast(ev realtime.Event)
}

// GoalAnnouncer tells the team once when the active goal's points reach its
// requirement. It never marks the goal achieved; that stays an explicit
// action.
type GoalAnnouncer struct {
	progress  ProgressSource
	announcer Announcer
	feed      Broadcaster
	logger    *zap.Logger

	mu        sync.Mutex
	announced map[uuid.UUID]bool
}

func NewGoalAnnouncer(progress ProgressSource, announcer Announcer, feed Broadcaster, logger *zap.Logger) *GoalAnnouncer {
	return &GoalAnnouncer{
		progress:  progress,
		announcer: announcer,
		feed:      feed,
		logger:    logger,
		announced: make(map[uuid.UUID]bool),
	}
}

// Run checks progress once. It reports whether an announcement was made.
func (a *GoalAnnouncer) Run(ctx context.Context) (bool, error) {
	p, err := a.progress.Current(ctx)
	if err != nil {
		return false, fmt.Errorf("current progress: %w", err)
	}
	if p.Goal == nil || !p.IsAchieved {
		return false, nil
	}

	a.mu.Lock()
	if a.announced[p.Goal.ID] {
		a.mu.Unlock()
		return false, nil
	}
	a.announced[p.Goal.ID] = true
	a.mu.Unlock()

	if a.feed != nil {
		a.feed.Broadcast(realtime.Event{Type: realtime.EventGoalReached, Payload: p})
	}
	if a.announcer != nil {
		text := fmt.Sprintf("🎉 The team reached %d points! %q is unlocked.", p.TotalPoints, p.Goal.Name)
		if err := a.announcer.Announce(ctx, text); err != nil {
			a.logger.Warn("goal announcement failed", zap.Stringer("goal_id", p.Goal.ID), zap.Error(err))
		}
	}

	a.logger.Info("goal reached",
		zap.Stringer("goal_id", p.Goal.ID),
		zap.String("name", p.Goal.Name),
		zap.Int("total_points", p.TotalPoints),
	)
	return true, nil
}

// Start schedules Run on spec (standard cron syntax or descriptors such as
// "@every 5m"). Stop the returned cron to end the schedule.
func (a *GoalAnnouncer) Start(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := a.Run(ctx); err != nil {
			a.logger.Error("goal announcer run failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule goal announcer %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
