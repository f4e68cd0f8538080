package persistence

import (
	"context"

	"github.com/tradebooks/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormUnitOfWork runs ledger writes inside a single database transaction
type GormUnitOfWork struct {
	db           *gorm.DB
	parties      *GormPartyRepository
	transactions *GormTransactionRepository
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{
		db:           db,
		parties:      NewGormPartyRepository(db),
		transactions: NewGormTransactionRepository(db),
	}
}

// Do executes fn with repositories bound to one transaction.
// Any error returned by fn rolls the transaction back.
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(parties ledger.PartyRepository, txs ledger.TransactionRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.parties.WithTx(tx), u.transactions.WithTx(tx))
	})
}

var _ ledger.UnitOfWork = (*GormUnitOfWork)(nil)
