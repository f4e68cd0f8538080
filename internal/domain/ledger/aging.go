package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/tradebooks/backend/internal/domain/shared"
)

// MaxCreditDays is the longest credit term a party or invoice may carry
const MaxCreditDays = 365

// DateLayout is the calendar date format used across reports
const DateLayout = "2006-01-02"

// Aging buckets, keyed by days past due
const (
	BucketCurrent = "CURRENT"
	Bucket1To15   = "1-15"
	Bucket16To30  = "16-30"
	Bucket31To45  = "31-45"
	Bucket46Plus  = "46+"
)

// Buckets lists the aging buckets in report order
var Buckets = []string{BucketCurrent, Bucket1To15, Bucket16To30, Bucket31To45, Bucket46Plus}

// AgingRecord is the day arithmetic for one invoice.
// BillDays and OverDays are whole UTC calendar days and OverDays <= BillDays.
type AgingRecord struct {
	InvoiceDate   time.Time
	AllowedDays   int
	DueDate       time.Time
	ReferenceDate time.Time
	BillDays      int
	OverDays      int
	Bucket        string
}

// Field exposes the numeric columns of the record to the totals aggregator
func (r AgingRecord) Field(name string) any {
	switch name {
	case "allowed_days":
		return r.AllowedDays
	case "bill_days":
		return r.BillDays
	case "over_days":
		return r.OverDays
	}
	return nil
}

// IsOverdue reports whether the reference date is past the due date
func (r AgingRecord) IsOverdue() bool {
	return r.OverDays > 0
}

// ComputeAging derives due date, bill days and over days for an invoice.
// A reference date before the invoice date yields zero bill days.
func ComputeAging(invoiceDate time.Time, allowedDays int, referenceDate time.Time) (AgingRecord, error) {
	if invoiceDate.IsZero() {
		return AgingRecord{}, shared.NewDomainError(shared.CodeInvalidDate, "invoice date is required")
	}
	if referenceDate.IsZero() {
		return AgingRecord{}, shared.NewDomainError(shared.CodeInvalidDate, "reference date is required")
	}
	if allowedDays < 0 {
		return AgingRecord{}, shared.NewDomainError(shared.CodeInvalidCreditDays, "credit days cannot be negative")
	}

	invoice := CalendarDay(invoiceDate)
	reference := CalendarDay(referenceDate)
	due := invoice.AddDate(0, 0, allowedDays)

	record := AgingRecord{
		InvoiceDate:   invoice,
		AllowedDays:   allowedDays,
		DueDate:       due,
		ReferenceDate: reference,
		BillDays:      max(0, DaysBetween(invoice, reference)),
		OverDays:      max(0, DaysBetween(due, reference)),
	}
	record.Bucket = BucketFor(record.OverDays)
	return record, nil
}

// BucketFor classifies days past due
func BucketFor(overDays int) string {
	switch {
	case overDays <= 0:
		return BucketCurrent
	case overDays <= 15:
		return Bucket1To15
	case overDays <= 30:
		return Bucket16To30
	case overDays <= 45:
		return Bucket31To45
	default:
		return Bucket46Plus
	}
}

// CalendarDay truncates t to midnight of its UTC calendar day
func CalendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar day
func Today() time.Time {
	return CalendarDay(time.Now())
}

// DaysBetween returns the whole calendar days from a to b, negative when b is earlier
func DaysBetween(a, b time.Time) int {
	return int(CalendarDay(b).Sub(CalendarDay(a)) / (24 * time.Hour))
}

// ParseDate parses a calendar date (2006-01-02) or an RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidDate, "date is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.CodeInvalidDate, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return CalendarDay(t), nil
}
