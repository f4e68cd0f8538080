package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SignConvention decides which side of a transaction grows the running balance
type SignConvention int

const (
	// CreditPositive: running = previous - debit + credit
	CreditPositive SignConvention = iota
	// DebitPositive: running = previous + debit - credit (receivable ledgers)
	DebitPositive
)

// String returns the convention name used in API responses
func (c SignConvention) String() string {
	if c == DebitPositive {
		return "DEBIT_POSITIVE"
	}
	return "CREDIT_POSITIVE"
}

// Delta returns the balance change a transaction causes under the convention
func (c SignConvention) Delta(t *Transaction) decimal.Decimal {
	if c == DebitPositive {
		return t.Debit.Sub(t.Credit)
	}
	return t.Credit.Sub(t.Debit)
}

// LedgerRow is a transaction annotated with the balance after it
type LedgerRow struct {
	Transaction
	RunningBalance decimal.Decimal
}

// Field exposes the numeric columns of a row to the totals aggregator
func (r LedgerRow) Field(name string) any {
	switch name {
	case "debit":
		return r.Debit
	case "credit":
		return r.Credit
	case "running_balance", "balance":
		return r.RunningBalance
	case "amount":
		return r.Amount()
	}
	return nil
}

// BuildLedger orders transactions by calendar date and carries a running
// balance from opening using the credit-positive convention.
func BuildLedger(txs []Transaction, opening decimal.Decimal) ([]LedgerRow, error) {
	return BuildLedgerWithConvention(txs, opening, CreditPositive)
}

// BuildLedgerWithConvention is BuildLedger with an explicit sign convention.
// A single invalid transaction rejects the whole batch. Same-date transactions
// keep their input order. The input slice is not modified.
func BuildLedgerWithConvention(txs []Transaction, opening decimal.Decimal, convention SignConvention) ([]LedgerRow, error) {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return CalendarDay(sorted[i].Date).Before(CalendarDay(sorted[j].Date))
	})

	rows := make([]LedgerRow, 0, len(sorted))
	running := opening
	for i := range sorted {
		running = running.Add(convention.Delta(&sorted[i]))
		rows = append(rows, LedgerRow{
			Transaction:    sorted[i],
			RunningBalance: running,
		})
	}
	return rows, nil
}

// ClosingBalance returns the balance after the last row, or opening when empty
func ClosingBalance(rows []LedgerRow, opening decimal.Decimal) decimal.Decimal {
	if len(rows) == 0 {
		return opening
	}
	return rows[len(rows)-1].RunningBalance
}

// SplitAt partitions transactions into those dated before from and the rest.
// A zero from puts everything in the window.
func SplitAt(txs []Transaction, from time.Time) (before, window []Transaction) {
	start := CalendarDay(from)
	for _, tx := range txs {
		if !from.IsZero() && CalendarDay(tx.Date).Before(start) {
			before = append(before, tx)
			continue
		}
		window = append(window, tx)
	}
	return before, window
}

// OpeningBalance returns base moved by every transaction in txs
func OpeningBalance(txs []Transaction, base decimal.Decimal, convention SignConvention) decimal.Decimal {
	balance := base
	for i := range txs {
		balance = balance.Add(convention.Delta(&txs[i]))
	}
	return balance
}
