package csvimport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowError(t *testing.T) {
	t.Run("Error with column", func(t *testing.T) {
		err := NewRowError(5, "debit", ErrCodeInvalidFormat, "invalid format, expected decimal amount")
		assert.Equal(t, "row 5, column 'debit': invalid format, expected decimal amount", err.Error())
	})

	t.Run("Error without column", func(t *testing.T) {
		err := NewRowError(10, "", ErrCodeMalformedRow, "malformed row")
		assert.Equal(t, "row 10: malformed row", err.Error())
	})
}

func TestErrorCollection(t *testing.T) {
	t.Run("Empty collection has no error", func(t *testing.T) {
		ec := NewErrorCollection(10)
		assert.False(t, ec.HasErrors())
		assert.NoError(t, ec.Err())
	})

	t.Run("Errors beyond the limit are counted, not kept", func(t *testing.T) {
		ec := NewErrorCollection(3)
		for i := 1; i <= 5; i++ {
			ec.AddRequired(i, "date")
		}

		assert.Len(t, ec.Errors(), 3)
		assert.Equal(t, 5, ec.TotalCount())
		assert.True(t, ec.IsTruncated())

		var verr *ValidationError
		require.True(t, errors.As(ec.Err(), &verr))
		assert.Equal(t, 5, verr.TotalErrors)
		assert.True(t, verr.Truncated)
		assert.Contains(t, verr.Error(), "5 error(s) found (showing first 3)")
	})

	t.Run("Default limit", func(t *testing.T) {
		ec := NewErrorCollection(0)
		for i := 0; i < 150; i++ {
			ec.AddFormat(i, "debit", "decimal amount", "x")
		}
		assert.Len(t, ec.Errors(), 100)
		assert.Equal(t, "x", ec.Errors()[0].Value)
		assert.Equal(t, ErrCodeInvalidFormat, ec.Errors()[0].Code)
	})
}
