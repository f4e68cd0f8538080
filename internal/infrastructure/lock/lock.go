// Package lock serializes ledger writes per party so the credit guard and the
// balance update see the same balance.
package lock

import (
	"context"

	"github.com/google/uuid"
)

// Release frees a held lock. It is safe to call more than once.
type Release func()

// PartyLocker grants exclusive access to one party's ledger
type PartyLocker interface {
	// Lock blocks until the party is free, ctx is done, or the locker gives up.
	// Giving up returns shared.ErrLockNotObtained.
	Lock(ctx context.Context, partyID uuid.UUID) (Release, error)
}

func partyKey(partyID uuid.UUID) string {
	return "tradebooks:lock:party:" + partyID.String()
}
