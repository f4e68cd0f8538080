package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormTransactionRepository) WithTx(tx *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: tx}
}

// FindByID finds a transaction by ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Transaction")
		}
		return nil, err
	}
	tx := model.ToDomain()
	return &tx, nil
}

// FindByParty returns a party's transactions in ledger order
func (r *GormTransactionRepository) FindByParty(ctx context.Context, partyID uuid.UUID, to time.Time) ([]ledger.Transaction, error) {
	query := r.db.WithContext(ctx).Where("party_id = ?", partyID)
	if !to.IsZero() {
		query = query.Where("txn_date <= ?", ledger.CalendarDay(to))
	}

	var txModels []models.TransactionModel
	if err := query.Order("txn_date ASC, created_at ASC, id ASC").Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindInvoices returns invoices for an aging run, oldest first
func (r *GormTransactionRepository) FindInvoices(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Transaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("ledger_transactions.kind = ?", string(ledger.KindInvoice))

	if filter.PartyID != nil {
		query = query.Where("ledger_transactions.party_id = ?", *filter.PartyID)
	}
	if filter.PartyType != "" {
		query = query.
			Joins("JOIN parties ON parties.id = ledger_transactions.party_id").
			Where("parties.type = ?", string(filter.PartyType))
	}
	if !filter.IncludeSettled {
		query = query.Where("ledger_transactions.settled_on IS NULL")
	}
	if !filter.AsOf.IsZero() {
		query = query.Where("ledger_transactions.txn_date <= ?", ledger.CalendarDay(filter.AsOf))
	}

	var txModels []models.TransactionModel
	if err := query.
		Order("ledger_transactions.txn_date ASC, ledger_transactions.created_at ASC, ledger_transactions.id ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// Create appends a transaction
func (r *GormTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	return r.db.WithContext(ctx).Create(models.TransactionModelFromDomain(tx)).Error
}

// MarkSettled records the settlement date of an open invoice
func (r *GormTransactionRepository) MarkSettled(ctx context.Context, id uuid.UUID, settledOn time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.TransactionModel{}).
		Where("id = ? AND kind = ? AND settled_on IS NULL", id, string(ledger.KindInvoice)).
		Update("settled_on", ledger.CalendarDay(settledOn))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeInvalidState, "Invoice is not open for settlement")
	}
	return nil
}

func toDomainTransactions(txModels []models.TransactionModel) []ledger.Transaction {
	txs := make([]ledger.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = txModels[i].ToDomain()
	}
	return txs
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
