package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// MemoryLocker is an in-process PartyLocker for single-instance deployments
// and tests. Locks are not shared between processes.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

// NewMemoryLocker creates a new MemoryLocker
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[uuid.UUID]*slot)}
}

// Lock waits for the party's slot or until ctx is done
func (l *MemoryLocker) Lock(ctx context.Context, partyID uuid.UUID) (Release, error) {
	l.mu.Lock()
	s, ok := l.slots[partyID]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[partyID] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.leave(partyID, s)
		return nil, shared.Wrap(shared.CodeLockNotObtained, "Party is busy, try again", ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.leave(partyID, s)
		})
	}, nil
}

// leave drops the slot once nobody holds or waits on it
func (l *MemoryLocker) leave(partyID uuid.UUID, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, partyID)
	}
}

var _ PartyLocker = (*MemoryLocker)(nil)
