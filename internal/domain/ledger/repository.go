package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// PartyFilter narrows party listings
type PartyFilter struct {
	shared.Filter
	Type            PartyType
	IncludeArchived bool
}

// PartyRepository persists party aggregates
type PartyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Party, error)
	FindByCode(ctx context.Context, code string) (*Party, error)
	FindAll(ctx context.Context, filter PartyFilter) ([]Party, int64, error)
	// FindByIDs returns the parties with the given IDs keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Party, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, party *Party) error
	// SaveWithLock persists the party only if the stored version is Version-1
	SaveWithLock(ctx context.Context, party *Party) error
}

// InvoiceFilter selects invoices for an aging run
type InvoiceFilter struct {
	PartyType      PartyType
	PartyID        *uuid.UUID
	IncludeSettled bool
	// AsOf excludes invoices dated after it when set
	AsOf time.Time
}

// TransactionRepository persists transactions. Transactions are append-only
// apart from the settlement date of invoices.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// FindByParty returns the party's transactions dated on or before to (zero
	// for no bound), ordered by date then creation.
	FindByParty(ctx context.Context, partyID uuid.UUID, to time.Time) ([]Transaction, error)
	FindInvoices(ctx context.Context, filter InvoiceFilter) ([]Transaction, error)
	Create(ctx context.Context, tx *Transaction) error
	MarkSettled(ctx context.Context, id uuid.UUID, settledOn time.Time) error
}

// UnitOfWork runs fn with repositories bound to one database transaction
type UnitOfWork interface {
	Do(ctx context.Context, fn func(parties PartyRepository, txs TransactionRepository) error) error
}
