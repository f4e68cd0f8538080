package csvimport

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVParser(t *testing.T) {
	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFdate,kind\n2024-01-01,INVOICE"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, "date", parser.Headers()[0])
	})

	t.Run("Empty file returns error", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(""))
		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Whitespace only file is empty", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader(" \n\n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Invalid UTF-8 is rejected", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader("date,kind\n\xff\xfe,INVOICE"))
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("Custom delimiter", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("date;kind;debit\n2024-01-01;INVOICE;10"), WithDelimiter(';'))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())
		assert.Equal(t, []string{"date", "kind", "debit"}, parser.Headers())
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("Headers are trimmed and lowercased", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("  Date , KIND ,Debit\n2024-01-01,INVOICE,10"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		assert.Equal(t, []string{"date", "kind", "debit"}, parser.Headers())
		assert.True(t, parser.HasHeader("Kind"))
		assert.False(t, parser.HasHeader("credit"))
		assert.Equal(t, []string{"credit"}, parser.MissingHeaders([]string{"date", "credit"}))
	})

	t.Run("Blank header row is missing", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader(", ,\n1,2,3"))
		require.NoError(t, err)
		assert.ErrorIs(t, parser.ParseHeader(), ErrMissingHeader)
	})
}

func TestReadRows(t *testing.T) {
	t.Run("Rows carry file line numbers", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("date,kind\n2024-01-01,INVOICE\n\n2024-01-02,PAYMENT"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows(0)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "INVOICE", rows[0].Get("kind"))
		assert.Equal(t, "2024-01-02", rows[1].Get("date"))
	})

	t.Run("Short rows fill missing columns with blanks", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("date,kind,debit\n2024-01-01"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, "", row.Get("debit"))

		_, err = parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Row cap is enforced", func(t *testing.T) {
		parser, err := NewCSVParser(strings.NewReader("date\n1\n2\n3"))
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		_, err = parser.ReadAllRows(2)
		assert.ErrorIs(t, err, ErrTooManyRows)
	})
}
