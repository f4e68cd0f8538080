package csvimport

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/ledger"
)

// Entry file columns
const (
	ColumnDate        = "date"
	ColumnKind        = "kind"
	ColumnDebit       = "debit"
	ColumnCredit      = "credit"
	ColumnDescription = "description"
	ColumnReference   = "reference"
	ColumnCreditDays  = "credit_days"
)

// Entry is one parsed ledger line from an uploaded file
type Entry struct {
	Line        int
	Date        time.Time
	Kind        string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Reference   string
	CreditDays  *int
}

// EntryOptions bounds an entry file
type EntryOptions struct {
	MaxRows   int
	MaxErrors int
}

// ParseEntries reads ledger entries from CSV. The file is accepted or
// rejected as a whole: any row error yields a *ValidationError listing them.
func ParseEntries(r io.Reader, opts EntryOptions) ([]Entry, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	errs := NewErrorCollection(opts.MaxErrors)
	for _, missing := range parser.MissingHeaders([]string{ColumnDate, ColumnKind}) {
		errs.Add(NewRowError(1, missing, ErrCodeRequiredField, "missing column '"+missing+"'"))
	}
	if !parser.HasHeader(ColumnDebit) && !parser.HasHeader(ColumnCredit) {
		errs.Add(NewRowError(1, "", ErrCodeRequiredField, "file needs a debit or credit column"))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	rows, err := parser.ReadAllRows(opts.MaxRows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if entry, ok := parseEntry(row, errs); ok {
			entries = append(entries, entry)
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseEntry(row *Row, errs *ErrorCollection) (Entry, bool) {
	before := errs.TotalCount()
	entry := Entry{
		Line:        row.Line,
		Kind:        strings.ToUpper(row.Get(ColumnKind)),
		Description: row.Get(ColumnDescription),
		Reference:   row.Get(ColumnReference),
	}

	if raw := row.Get(ColumnDate); raw == "" {
		errs.AddRequired(row.Line, ColumnDate)
	} else if date, err := ledger.ParseDate(raw); err != nil {
		errs.AddFormat(row.Line, ColumnDate, "YYYY-MM-DD", raw)
	} else {
		entry.Date = date
	}

	if entry.Kind == "" {
		errs.AddRequired(row.Line, ColumnKind)
	} else if !ledger.TransactionKind(entry.Kind).IsValid() {
		err := NewRowError(row.Line, ColumnKind, ErrCodeInvalidValue, "unknown transaction kind")
		err.Value = entry.Kind
		errs.Add(err)
	}

	entry.Debit = parseAmountColumn(row, ColumnDebit, errs)
	entry.Credit = parseAmountColumn(row, ColumnCredit, errs)

	if raw := row.Get(ColumnCreditDays); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			errs.AddFormat(row.Line, ColumnCreditDays, "whole number of days", raw)
		} else {
			entry.CreditDays = &days
		}
	}

	return entry, errs.TotalCount() == before
}

// parseAmountColumn accepts thousands separators ("1,500") but, unlike report
// totals, reports anything else that does not parse.
func parseAmountColumn(row *Row, column string, errs *ErrorCollection) decimal.Decimal {
	raw := row.Get(column)
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		errs.AddFormat(row.Line, column, "decimal amount", raw)
		return decimal.Zero
	}
	if amount.IsNegative() {
		err := NewRowError(row.Line, column, ErrCodeInvalidValue, "amount cannot be negative")
		err.Value = raw
		errs.Add(err)
		return decimal.Zero
	}
	return amount
}
