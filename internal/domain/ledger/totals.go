package ledger

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Row is anything the totals aggregator can read numeric columns from
type Row interface {
	Field(name string) any
}

// Record adapts a loosely typed map, such as a decoded JSON report row
type Record map[string]any

// Field returns the raw value stored under name
func (r Record) Field(name string) any {
	return r[name]
}

// Aggregate sums the named fields across rows. Every requested field is
// present in the result; missing or unparsable values count as zero.
func Aggregate[R Row](rows []R, fields []string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(fields))
	for _, field := range fields {
		totals[field] = decimal.Zero
	}
	for _, row := range rows {
		for _, field := range fields {
			totals[field] = totals[field].Add(ParseAmount(row.Field(field)))
		}
	}
	return totals
}

// ParseAmount leniently converts a report value to a decimal. Thousands
// separators are stripped ("1,500" is 1500); anything that does not parse is zero.
func ParseAmount(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case string:
		return parseAmountString(val)
	case json.Number:
		return parseAmountString(val.String())
	case int:
		return decimal.NewFromInt(int64(val))
	case int32:
		return decimal.NewFromInt32(val)
	case int64:
		return decimal.NewFromInt(val)
	case float32:
		return parseFloat(float64(val))
	case float64:
		return parseFloat(val)
	}
	return decimal.Zero
}

func parseFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func parseAmountString(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
