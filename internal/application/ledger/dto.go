package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/ledger"
)

// =============================================================================
// Party DTOs
// =============================================================================

// CreatePartyRequest represents a request to onboard a customer or supplier
type CreatePartyRequest struct {
	Code            string
	Name            string
	Type            string
	Phone           string
	PaymentTerms    string
	CreditDaysLimit int
	CreditCashLimit decimal.Decimal
	OpeningBalance  decimal.Decimal
}

// UpdateTermsRequest represents a change of payment terms and limits
type UpdateTermsRequest struct {
	PaymentTerms    string
	CreditDaysLimit int
	CreditCashLimit decimal.Decimal
}

// PartyListFilter narrows a party listing
type PartyListFilter struct {
	Page            int
	PageSize        int
	OrderBy         string
	OrderDir        string
	Search          string
	Type            string
	IncludeArchived bool
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID              uuid.UUID       `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Type            string          `json:"type"`
	Phone           string          `json:"phone,omitempty"`
	PaymentTerms    string          `json:"payment_terms"`
	CreditDaysLimit int             `json:"credit_days_limit"`
	CreditCashLimit decimal.Decimal `json:"credit_cash_limit"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	Balance         decimal.Decimal `json:"balance"`
	Archived        bool            `json:"archived"`
	ArchivedAt      *time.Time      `json:"archived_at,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToPartyResponse converts a domain Party to a response
func ToPartyResponse(p *ledger.Party) PartyResponse {
	return PartyResponse{
		ID:              p.ID,
		Code:            p.Code,
		Name:            p.Name,
		Type:            string(p.Type),
		Phone:           p.Phone,
		PaymentTerms:    string(p.PaymentTerms),
		CreditDaysLimit: p.CreditDaysLimit,
		CreditCashLimit: p.CreditCashLimit,
		OpeningBalance:  p.OpeningBalance,
		Balance:         p.Balance,
		Archived:        p.IsArchived(),
		ArchivedAt:      p.ArchivedAt,
		Version:         p.Version,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// PartyListResult is one page of parties
type PartyListResult struct {
	Items    []PartyResponse
	Total    int64
	Page     int
	PageSize int
}

// =============================================================================
// Entry DTOs
// =============================================================================

// RecordEntryRequest represents a transaction to post to a party ledger
type RecordEntryRequest struct {
	Date        time.Time
	Kind        string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Reference   string
	CreditDays  *int
	// Line locates the entry in an imported file; zero outside imports
	Line        int
}

// ImportEntriesResult is the outcome of an atomic batch import
type ImportEntriesResult struct {
	Imported     int                   `json:"imported"`
	Transactions []TransactionResponse `json:"transactions"`
	Balance      decimal.Decimal       `json:"balance"`
}

// TransactionResponse represents a ledger transaction in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	PartyID     uuid.UUID       `json:"party_id"`
	Date        string          `json:"date"`
	Kind        string          `json:"kind"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	CreditDays  *int            `json:"credit_days,omitempty"`
	SettledOn   *string         `json:"settled_on,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain Transaction to a response
func ToTransactionResponse(t *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		PartyID:     t.PartyID,
		Date:        t.Date.Format(ledger.DateLayout),
		Kind:        string(t.Kind),
		Debit:       t.Debit,
		Credit:      t.Credit,
		Description: t.Description,
		Reference:   t.Reference,
		CreditDays:  t.CreditDays,
		CreatedAt:   t.CreatedAt,
	}
	if t.SettledOn != nil {
		settled := t.SettledOn.Format(ledger.DateLayout)
		resp.SettledOn = &settled
	}
	return resp
}

// CreditCheckResponse reports a credit guard decision
type CreditCheckResponse struct {
	Allowed        bool            `json:"allowed"`
	Enforced       bool            `json:"enforced"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Proposed       decimal.Decimal `json:"proposed"`
	WouldBeBalance decimal.Decimal `json:"would_be_balance"`
	Ceiling        decimal.Decimal `json:"ceiling"`
}

// EntryResult is the outcome of a recorded entry
type EntryResult struct {
	Transaction TransactionResponse  `json:"transaction"`
	Balance     decimal.Decimal      `json:"balance"`
	CreditCheck *CreditCheckResponse `json:"credit_check,omitempty"`
}

// =============================================================================
// Report DTOs
// =============================================================================

// StatementRequest bounds a party statement; zero dates are open ends
type StatementRequest struct {
	From time.Time
	To   time.Time
}

// StatementRow is one ledger line with its running balance
type StatementRow struct {
	TransactionResponse
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// Statement is a party ledger for a date window
type Statement struct {
	Party          PartyResponse              `json:"party"`
	From           *string                    `json:"from,omitempty"`
	To             *string                    `json:"to,omitempty"`
	Convention     string                     `json:"convention"`
	OpeningBalance decimal.Decimal            `json:"opening_balance"`
	Rows           []StatementRow             `json:"rows"`
	Totals         map[string]decimal.Decimal `json:"totals"`
	ClosingBalance decimal.Decimal            `json:"closing_balance"`
}

// AgingRequest selects invoices for an aging report
type AgingRequest struct {
	PartyType      string
	PartyID        *uuid.UUID
	AsOf           time.Time
	IncludeSettled bool
}

// AgingRow is one invoice in an aging report
type AgingRow struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	PartyID       uuid.UUID       `json:"party_id"`
	PartyCode     string          `json:"party_code"`
	PartyName     string          `json:"party_name"`
	PartyType     string          `json:"party_type"`
	Reference     string          `json:"reference,omitempty"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	ReferenceDate string          `json:"reference_date"`
	AllowedDays   int             `json:"allowed_days"`
	BillDays      int             `json:"bill_days"`
	OverDays      int             `json:"over_days"`
	Bucket        string          `json:"bucket"`
	Amount        decimal.Decimal `json:"amount"`
	Settled       bool            `json:"settled"`
}

// Field exposes the numeric columns of an aging row to the totals aggregator
func (r AgingRow) Field(name string) any {
	switch name {
	case "amount":
		return r.Amount
	case "allowed_days":
		return r.AllowedDays
	case "bill_days":
		return r.BillDays
	case "over_days":
		return r.OverDays
	default:
		return nil
	}
}

// AgingBucketSummary sums the invoices in one overdue bucket
type AgingBucketSummary struct {
	Bucket string          `json:"bucket"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// AgingReport is the credit aging of a set of invoices
type AgingReport struct {
	AsOf           string                     `json:"as_of"`
	PartyType      string                     `json:"party_type,omitempty"`
	IncludeSettled bool                       `json:"include_settled"`
	Rows           []AgingRow                 `json:"rows"`
	Buckets        []AgingBucketSummary       `json:"buckets"`
	Totals         map[string]decimal.Decimal `json:"totals"`
}

// TotalsRequest asks for column sums over caller-supplied rows
type TotalsRequest struct {
	Rows   []map[string]any
	Fields []string
}

// ExportResult is a rendered report file, optionally archived
type ExportResult struct {
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	Data        []byte     `json:"-"`
	ArchiveKey  string     `json:"archive_key,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}
