package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/internal/domain/shared"
)

func TestComputeAging(t *testing.T) {
	t.Run("due date and day counts", func(t *testing.T) {
		rec, err := ComputeAging(day("2025-01-01"), 30, day("2025-02-15"))
		require.NoError(t, err)
		assert.Equal(t, 45, rec.BillDays)
		assert.Equal(t, day("2025-01-31"), rec.DueDate)
		assert.Equal(t, 15, rec.OverDays)
		assert.Equal(t, Bucket1To15, rec.Bucket)
		assert.True(t, rec.IsOverdue())
	})

	t.Run("not yet due has zero over days", func(t *testing.T) {
		rec, err := ComputeAging(day("2025-01-01"), 30, day("2025-01-20"))
		require.NoError(t, err)
		assert.Equal(t, 19, rec.BillDays)
		assert.Equal(t, 0, rec.OverDays)
		assert.Equal(t, BucketCurrent, rec.Bucket)
	})

	t.Run("reference before invoice clamps bill days", func(t *testing.T) {
		rec, err := ComputeAging(day("2025-03-10"), 0, day("2025-03-01"))
		require.NoError(t, err)
		assert.Equal(t, 0, rec.BillDays)
		assert.Equal(t, 0, rec.OverDays)
	})

	t.Run("time of day and zone are ignored", func(t *testing.T) {
		invoice := time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
		ref := time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC)
		rec, err := ComputeAging(invoice, 0, ref)
		require.NoError(t, err)
		assert.Equal(t, 1, rec.BillDays)
		assert.Equal(t, 1, rec.OverDays)
	})

	t.Run("crosses leap day", func(t *testing.T) {
		rec, err := ComputeAging(day("2024-02-20"), 10, day("2024-03-05"))
		require.NoError(t, err)
		assert.Equal(t, day("2024-03-01"), rec.DueDate)
		assert.Equal(t, 14, rec.BillDays)
		assert.Equal(t, 4, rec.OverDays)
	})

	t.Run("missing dates fail with INVALID_DATE", func(t *testing.T) {
		_, err := ComputeAging(time.Time{}, 30, day("2025-01-01"))
		assert.Equal(t, shared.CodeInvalidDate, shared.CodeOf(err))

		_, err = ComputeAging(day("2025-01-01"), 30, time.Time{})
		assert.Equal(t, shared.CodeInvalidDate, shared.CodeOf(err))
	})

	t.Run("negative credit days are rejected", func(t *testing.T) {
		_, err := ComputeAging(day("2025-01-01"), -1, day("2025-01-02"))
		assert.Equal(t, shared.CodeInvalidCreditDays, shared.CodeOf(err))
	})
}

func TestComputeAging_NonNegative(t *testing.T) {
	start := day("2024-12-01")
	for invoiceOffset := 0; invoiceOffset < 60; invoiceOffset += 7 {
		for allowed := 0; allowed <= 45; allowed += 5 {
			for refOffset := 0; refOffset < 120; refOffset += 11 {
				rec, err := ComputeAging(start.AddDate(0, 0, invoiceOffset), allowed, start.AddDate(0, 0, refOffset))
				require.NoError(t, err)
				assert.GreaterOrEqual(t, rec.BillDays, 0)
				assert.GreaterOrEqual(t, rec.OverDays, 0)
				assert.LessOrEqual(t, rec.OverDays, rec.BillDays)
			}
		}
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		overDays int
		want     string
	}{
		{0, BucketCurrent},
		{1, Bucket1To15},
		{15, Bucket1To15},
		{16, Bucket16To30},
		{30, Bucket16To30},
		{31, Bucket31To45},
		{45, Bucket31To45},
		{46, Bucket46Plus},
		{400, Bucket46Plus},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketFor(tt.overDays), "overDays=%d", tt.overDays)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-15")
	require.NoError(t, err)
	assert.Equal(t, day("2025-02-15"), d)

	d, err = ParseDate("2025-02-15T22:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, day("2025-02-15"), d)

	for _, bad := range []string{"", "  ", "15/02/2025", "2025-13-01", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Equal(t, shared.CodeInvalidDate, shared.CodeOf(err), "input %q", bad)
	}
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 31, DaysBetween(day("2025-01-01"), day("2025-02-01")))
	assert.Equal(t, -31, DaysBetween(day("2025-02-01"), day("2025-01-01")))
}
