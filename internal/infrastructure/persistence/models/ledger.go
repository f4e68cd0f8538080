package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/ledger"
)

// PartyModel is the persistence model for the Party aggregate
type PartyModel struct {
	AggregateModel
	Code            string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Type            string          `gorm:"type:varchar(20);not null;index"`
	Phone           string          `gorm:"type:varchar(32)"`
	PaymentTerms    string          `gorm:"type:varchar(20);not null;default:'CASH'"`
	CreditDaysLimit int             `gorm:"not null;default:0"`
	CreditCashLimit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningBalance  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ArchivedAt      *time.Time
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party
func (m *PartyModel) ToDomain() *ledger.Party {
	return &ledger.Party{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Type:              ledger.PartyType(m.Type),
		Phone:             m.Phone,
		PaymentTerms:      ledger.PaymentTerms(m.PaymentTerms),
		CreditDaysLimit:   m.CreditDaysLimit,
		CreditCashLimit:   m.CreditCashLimit,
		OpeningBalance:    m.OpeningBalance,
		Balance:           m.Balance,
		ArchivedAt:        m.ArchivedAt,
	}
}

// PartyModelFromDomain creates a persistence model from a domain Party
func PartyModelFromDomain(p *ledger.Party) *PartyModel {
	m := &PartyModel{
		Code:            p.Code,
		Name:            p.Name,
		Type:            string(p.Type),
		Phone:           p.Phone,
		PaymentTerms:    string(p.PaymentTerms),
		CreditDaysLimit: p.CreditDaysLimit,
		CreditCashLimit: p.CreditCashLimit,
		OpeningBalance:  p.OpeningBalance,
		Balance:         p.Balance,
		ArchivedAt:      p.ArchivedAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// TransactionModel is the persistence model for ledger transactions.
// Rows are append-only apart from settled_on.
type TransactionModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PartyID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_tx_party_date,priority:1"`
	TxnDate     time.Time       `gorm:"type:date;not null;index:idx_ledger_tx_party_date,priority:2"`
	Kind        string          `gorm:"type:varchar(20);not null"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Description string          `gorm:"type:varchar(500)"`
	Reference   string          `gorm:"type:varchar(100)"`
	CreditDays  *int
	SettledOn   *time.Time `gorm:"type:date"`
	CreatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "ledger_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
// Dates come back as UTC calendar days regardless of driver time zone.
func (m *TransactionModel) ToDomain() ledger.Transaction {
	tx := ledger.Transaction{
		ID:          m.ID,
		PartyID:     m.PartyID,
		Date:        ledger.CalendarDay(m.TxnDate),
		Kind:        ledger.TransactionKind(m.Kind),
		Debit:       m.Debit,
		Credit:      m.Credit,
		Description: m.Description,
		Reference:   m.Reference,
		CreditDays:  m.CreditDays,
		CreatedAt:   m.CreatedAt,
	}
	if m.SettledOn != nil {
		settled := ledger.CalendarDay(*m.SettledOn)
		tx.SettledOn = &settled
	}
	return tx
}

// TransactionModelFromDomain creates a persistence model from a domain Transaction
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	return &TransactionModel{
		ID:          t.ID,
		PartyID:     t.PartyID,
		TxnDate:     ledger.CalendarDay(t.Date),
		Kind:        string(t.Kind),
		Debit:       t.Debit,
		Credit:      t.Credit,
		Description: t.Description,
		Reference:   t.Reference,
		CreditDays:  t.CreditDays,
		SettledOn:   t.SettledOn,
		CreatedAt:   t.CreatedAt,
	}
}
