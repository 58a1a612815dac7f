// Package notify delivers best-effort notifications about new messages to
// external chat services. Delivery failures are logged and dropped; they
// never reach the caller that produced the event.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/lalith-99/heartfelt/internal/models"
	"go.uber.org/zap"
)

// Event describes one appended message, already resolved to display names.
type Event struct {
	SenderName      string
	RecipientName   string
	RecipientLineID string
	Type            models.MessageType
	Content         string
	AppURL          string
}

// Notifier is a one-way sink. A nil error means delivered or deliberately
// skipped (sink disabled, recipient not reachable on this channel).
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Dispatcher fans an event out to every notifier on a background
// goroutine, bounded by a per-event timeout.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	logger    *zap.Logger
	wg        sync.WaitGroup
}

func NewDispatcher(timeout time.Duration, logger *zap.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Dispatch returns immediately.
func (d *Dispatcher) Dispatch(ev Event) {
	if len(d.notifiers) == 0 {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		for _, n := range d.notifiers {
			if err := n.Notify(ctx, ev); err != nil {
				d.logger.Warn("notification failed",
					zap.String("notifier", n.Name()),
					zap.String("type", string(ev.Type)),
					zap.Error(err),
				)
			}
		}
	}()
}

// Wait blocks until every dispatched event has been handled. Called on
// shutdown so in-flight notifications are not cut off.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
