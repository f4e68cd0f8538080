// Package ledger holds the party ledger domain: transactions, running-balance
// statements, invoice aging, report totals and the credit-limit guard.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// TransactionKind classifies a financial event
type TransactionKind string

const (
	KindInvoice    TransactionKind = "INVOICE"
	KindPayment    TransactionKind = "PAYMENT"
	KindDeposit    TransactionKind = "DEPOSIT"
	KindRecovery   TransactionKind = "RECOVERY"
	KindAdjustment TransactionKind = "ADJUSTMENT"
)

// IsValid returns true if the kind is one of the known kinds
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindInvoice, KindPayment, KindDeposit, KindRecovery, KindAdjustment:
		return true
	}
	return false
}

// String returns the string representation
func (k TransactionKind) String() string {
	return string(k)
}

// Transaction is an atomic financial event for one party.
// Debit and Credit are never both non-zero.
type Transaction struct {
	ID          uuid.UUID
	PartyID     uuid.UUID
	Date        time.Time
	Kind        TransactionKind
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Reference   string
	CreditDays  *int
	SettledOn   *time.Time
	CreatedAt   time.Time
}

// NewTransaction creates a validated transaction dated on the calendar day of date
func NewTransaction(partyID uuid.UUID, date time.Time, kind TransactionKind, debit, credit decimal.Decimal, description string) (*Transaction, error) {
	tx := &Transaction{
		ID:          uuid.New(),
		PartyID:     partyID,
		Date:        CalendarDay(date),
		Kind:        kind,
		Debit:       debit,
		Credit:      credit,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// Validate checks the transaction invariants
func (t *Transaction) Validate() error {
	if t.Date.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidDate, fmt.Sprintf("transaction %s has no date", t.ID))
	}
	if !t.Kind.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidTransaction, fmt.Sprintf("transaction %s has unknown kind %q", t.ID, t.Kind))
	}
	if t.Debit.IsNegative() || t.Credit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidTransaction, fmt.Sprintf("transaction %s has a negative amount", t.ID))
	}
	if !t.Debit.IsZero() && !t.Credit.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidTransaction, fmt.Sprintf("transaction %s has both debit and credit", t.ID))
	}
	if t.CreditDays != nil {
		if t.Kind != KindInvoice {
			return shared.NewDomainError(shared.CodeInvalidTransaction, fmt.Sprintf("transaction %s: credit days apply to invoices only", t.ID))
		}
		if *t.CreditDays < 0 || *t.CreditDays > MaxCreditDays {
			return shared.NewDomainError(shared.CodeInvalidCreditDays, fmt.Sprintf("credit days must be between 0 and %d", MaxCreditDays))
		}
	}
	return nil
}

// Amount returns whichever side of the transaction is populated
func (t *Transaction) Amount() decimal.Decimal {
	if !t.Debit.IsZero() {
		return t.Debit
	}
	return t.Credit
}

// IsInvoice reports whether the transaction is an invoice
func (t *Transaction) IsInvoice() bool {
	return t.Kind == KindInvoice
}

// IsSettled reports whether the invoice has a recovery/payment date
func (t *Transaction) IsSettled() bool {
	return t.SettledOn != nil
}

// WithCreditDays sets an invoice-specific credit term
func (t *Transaction) WithCreditDays(days int) error {
	t.CreditDays = &days
	return t.Validate()
}

// Settle records the date an invoice was recovered or paid
func (t *Transaction) Settle(on time.Time) error {
	if !t.IsInvoice() {
		return shared.NewDomainError(shared.CodeInvalidState, "only invoices can be settled")
	}
	if t.IsSettled() {
		return shared.NewDomainError(shared.CodeInvalidState, "invoice is already settled")
	}
	if on.IsZero() {
		return shared.NewDomainError(shared.CodeInvalidDate, "settlement date is required")
	}
	day := CalendarDay(on)
	if day.Before(t.Date) {
		return shared.NewDomainError(shared.CodeInvalidDate, "settlement date cannot be before the invoice date")
	}
	t.SettledOn = &day
	return nil
}
