// Package memory implements the repository interfaces in process memory.
//
// It backs STORAGE=memory for local runs and is the store the service and
// API tests run against. One mutex guards every table, which makes each
// method (including the goal swap) atomic with respect to all others.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	seq int64

	users    map[uuid.UUID]*userRow
	messages map[uuid.UUID]*messageRow
	goals    map[uuid.UUID]*goalRow
	library  map[uuid.UUID]*libraryRow
	slack    *slackRow

	motivations map[uuid.UUID]*motivationRow
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[uuid.UUID]*userRow),
		messages: make(map[uuid.UUID]*messageRow),
		goals:    make(map[uuid.UUID]*goalRow),
		library:  make(map[uuid.UUID]*libraryRow),

		motivations: make(map[uuid.UUID]*motivationRow),
	}
}

// SetClock replaces the time source used for created_at, start_date and
// the other server-assigned timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// nextSeq must be called with mu held. The sequence breaks ties between
// rows created at the same instant.
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Messages() *MessageStore { return &MessageStore{s: s} }

func (s *Store) Goals() *GoalStore { return &GoalStore{s: s} }

func (s *Store) Users() *UserStore { return &UserStore{s: s} }

func (s *Store) Library() *LibraryStore { return &LibraryStore{s: s} }

func (s *Store) Motivations() *MotivationStore { return &MotivationStore{s: s} }

func (s *Store) SlackSettings() *SlackStore { return &SlackStore{s: s} }
