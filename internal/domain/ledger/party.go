package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/shared"
)

// PartyType distinguishes customers from suppliers
type PartyType string

const (
	PartyTypeCustomer PartyType = "CUSTOMER"
	PartyTypeSupplier PartyType = "SUPPLIER"
)

// IsValid returns true if the party type is valid
func (t PartyType) IsValid() bool {
	return t == PartyTypeCustomer || t == PartyTypeSupplier
}

// Convention returns the sign convention that makes the party's balance
// positive when money is owed: customers owe us for invoices (debit),
// we owe suppliers for purchase invoices (credit).
func (t PartyType) Convention() SignConvention {
	if t == PartyTypeCustomer {
		return DebitPositive
	}
	return CreditPositive
}

// PaymentTerms are the settlement terms agreed with a party
type PaymentTerms string

const (
	PaymentTermsCash   PaymentTerms = "CASH"
	PaymentTermsCredit PaymentTerms = "CREDIT"
)

// IsValid returns true if the payment terms are valid
func (p PaymentTerms) IsValid() bool {
	return p == PaymentTermsCash || p == PaymentTermsCredit
}

// PartyBalance is the current aggregate state the credit guard reads
type PartyBalance struct {
	Balance         decimal.Decimal
	CreditDaysLimit int
	CreditCashLimit decimal.Decimal
	PaymentTerms    PaymentTerms
}

// OnCredit reports whether the guard applies to this balance at all
func (b PartyBalance) OnCredit() bool {
	return b.PaymentTerms == PaymentTermsCredit
}

// Party is a customer or supplier with a running balance.
// Parties are never deleted, only archived.
type Party struct {
	shared.BaseAggregateRoot
	Code            string
	Name            string
	Type            PartyType
	Phone           string
	PaymentTerms    PaymentTerms
	CreditDaysLimit int
	CreditCashLimit decimal.Decimal
	OpeningBalance  decimal.Decimal
	Balance         decimal.Decimal
	ArchivedAt      *time.Time
}

// NewParty onboards a party with cash terms and the given opening balance
func NewParty(code, name string, partyType PartyType, opening decimal.Decimal) (*Party, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidCode, "Party code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidCode, "Party code cannot exceed 50 characters")
	}
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidName, "Party name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError(shared.CodeInvalidName, "Party name cannot exceed 200 characters")
	}
	if !partyType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidPartyType, fmt.Sprintf("Invalid party type: %s", partyType))
	}

	return &Party{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Type:              partyType,
		PaymentTerms:      PaymentTermsCash,
		CreditCashLimit:   decimal.Zero,
		OpeningBalance:    opening,
		Balance:           opening,
	}, nil
}

// SetPhone stores an already normalized phone number
func (p *Party) SetPhone(phone string) {
	p.Phone = phone
	p.IncrementVersion()
}

// SetTerms updates payment terms and credit limits
func (p *Party) SetTerms(terms PaymentTerms, creditDays int, creditLimit decimal.Decimal) error {
	if !terms.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidTerms, fmt.Sprintf("Invalid payment terms: %s", terms))
	}
	if creditDays < 0 {
		return shared.NewDomainError(shared.CodeInvalidCreditDays, "Credit days cannot be negative")
	}
	if creditDays > MaxCreditDays {
		return shared.NewDomainError(shared.CodeInvalidCreditDays, fmt.Sprintf("Credit days cannot exceed %d", MaxCreditDays))
	}
	if creditLimit.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidCreditLimit, "Credit limit cannot be negative")
	}

	p.PaymentTerms = terms
	p.CreditDaysLimit = creditDays
	p.CreditCashLimit = creditLimit
	p.IncrementVersion()
	return nil
}

// Archive soft-deletes the party
func (p *Party) Archive() error {
	if p.IsArchived() {
		return shared.NewDomainError(shared.CodeInvalidState, "Party is already archived")
	}
	now := time.Now()
	p.ArchivedAt = &now
	p.IncrementVersion()
	return nil
}

// IsArchived reports whether the party has been archived
func (p *Party) IsArchived() bool {
	return p.ArchivedAt != nil
}

// OnCredit reports whether the party trades on credit terms
func (p *Party) OnCredit() bool {
	return p.PaymentTerms == PaymentTermsCredit
}

// Snapshot returns the balance view used by the credit guard
func (p *Party) Snapshot() PartyBalance {
	return PartyBalance{
		Balance:         p.Balance,
		CreditDaysLimit: p.CreditDaysLimit,
		CreditCashLimit: p.CreditCashLimit,
		PaymentTerms:    p.PaymentTerms,
	}
}

// Exposure returns how much tx would add to what the party owes (or is owed).
// Transactions that reduce the balance have zero exposure.
func (p *Party) Exposure(tx *Transaction) decimal.Decimal {
	delta := p.Type.Convention().Delta(tx)
	if delta.IsPositive() {
		return delta
	}
	return decimal.Zero
}

// CreditDaysFor returns the credit term for an invoice: its own override or
// the party default.
func (p *Party) CreditDaysFor(tx *Transaction) int {
	if tx.CreditDays != nil {
		return *tx.CreditDays
	}
	return p.CreditDaysLimit
}

// Apply moves the party balance by a validated transaction
func (p *Party) Apply(tx *Transaction) error {
	if p.IsArchived() {
		return shared.NewDomainError(shared.CodePartyArchived, "Party is archived and cannot take new transactions")
	}
	if tx.PartyID != p.ID {
		return shared.NewDomainError(shared.CodeInvalidTransaction, "Transaction belongs to a different party")
	}
	if err := tx.Validate(); err != nil {
		return err
	}
	p.Balance = p.Balance.Add(p.Type.Convention().Delta(tx))
	p.IncrementVersion()
	return nil
}

// ApplyBatch moves the balance by every transaction as a single change.
// check runs before each transaction against the balance reached so far; any
// error rejects the batch and leaves the party untouched.
func (p *Party) ApplyBatch(txs []*Transaction, check func(balance decimal.Decimal, tx *Transaction) error) error {
	if p.IsArchived() {
		return shared.NewDomainError(shared.CodePartyArchived, "Party is archived and cannot take new transactions")
	}
	convention := p.Type.Convention()
	balance := p.Balance
	for _, tx := range txs {
		if tx.PartyID != p.ID {
			return shared.NewDomainError(shared.CodeInvalidTransaction, "Transaction belongs to a different party")
		}
		if err := tx.Validate(); err != nil {
			return err
		}
		if check != nil {
			if err := check(balance, tx); err != nil {
				return err
			}
		}
		balance = balance.Add(convention.Delta(tx))
	}
	p.Balance = balance
	p.IncrementVersion()
	return nil
}
