// Package service holds the business rules of the ledger: validation,
// authorization and the side effects that follow a successful write.
// Persistence lives behind the repository interfaces.
package service

import (
	"github.com/google/uuid"
	"github.com/lalith-99/heartfelt/internal/notify"
	"github.com/lalith-99/heartfelt/internal/realtime"
)

// Feed is the live event stream to connected clients.
type Feed interface {
	Broadcast(ev realtime.Event)
	SendToUser(userID uuid.UUID, ev realtime.Event)
}

// Dispatcher hands an event to the notification sinks without waiting.
type Dispatcher interface {
	Dispatch(ev notify.Event)
}

type nopFeed struct{}

func (nopFeed) Broadcast(realtime.Event) {}

func (nopFeed) SendToUser(uuid.UUID, realtime.Event) {}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(notify.Event) {}
