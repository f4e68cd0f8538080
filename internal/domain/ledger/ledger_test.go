package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/internal/domain/shared"
)

func day(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(date string, kind TransactionKind, debit, credit string) Transaction {
	return Transaction{
		ID:      uuid.New(),
		PartyID: uuid.New(),
		Date:    day(date),
		Kind:    kind,
		Debit:   dec(debit),
		Credit:  dec(credit),
	}
}

func TestBuildLedger(t *testing.T) {
	t.Run("empty input returns empty ledger", func(t *testing.T) {
		rows, err := BuildLedger([]Transaction{}, dec("500"))
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
		assert.True(t, ClosingBalance(rows, dec("500")).Equal(dec("500")))
	})

	t.Run("nil input returns empty ledger", func(t *testing.T) {
		rows, err := BuildLedger(nil, dec("500"))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("running balance subtracts debit and adds credit", func(t *testing.T) {
		txs := []Transaction{
			tx("2025-01-03", KindPayment, "0", "200"),
			tx("2025-01-01", KindInvoice, "1000", "0"),
			tx("2025-01-02", KindRecovery, "0", "300"),
		}
		rows, err := BuildLedger(txs, dec("100"))
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, day("2025-01-01"), rows[0].Date)
		assert.True(t, rows[0].RunningBalance.Equal(dec("-900")))
		assert.True(t, rows[1].RunningBalance.Equal(dec("-600")))
		assert.True(t, rows[2].RunningBalance.Equal(dec("-400")))
	})

	t.Run("final balance equals opening plus credits minus debits", func(t *testing.T) {
		txs := []Transaction{
			tx("2025-03-01", KindInvoice, "1250.50", "0"),
			tx("2025-02-01", KindDeposit, "0", "99.99"),
			tx("2025-02-15", KindAdjustment, "0", "0"),
			tx("2025-01-20", KindInvoice, "310", "0"),
			tx("2025-03-01", KindRecovery, "0", "700"),
		}
		opening := dec("42.01")
		rows, err := BuildLedger(txs, opening)
		require.NoError(t, err)

		expected := opening
		for _, tr := range txs {
			expected = expected.Add(tr.Credit).Sub(tr.Debit)
		}
		assert.True(t, rows[len(rows)-1].RunningBalance.Equal(expected),
			"got %s want %s", rows[len(rows)-1].RunningBalance, expected)
	})

	t.Run("same-date transactions keep input order", func(t *testing.T) {
		first := tx("2025-01-05", KindInvoice, "10", "0")
		second := tx("2025-01-05", KindPayment, "0", "10")
		third := tx("2025-01-05", KindInvoice, "5", "0")
		earlier := tx("2025-01-01", KindDeposit, "0", "1")

		rows, err := BuildLedger([]Transaction{first, second, earlier, third}, decimal.Zero)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, earlier.ID, rows[0].ID)
		assert.Equal(t, first.ID, rows[1].ID)
		assert.Equal(t, second.ID, rows[2].ID)
		assert.Equal(t, third.ID, rows[3].ID)
	})

	t.Run("time of day does not affect ordering within a date", func(t *testing.T) {
		late := tx("2025-01-05", KindInvoice, "10", "0")
		late.Date = late.Date.Add(20 * time.Hour)
		early := tx("2025-01-05", KindInvoice, "20", "0")
		early.Date = early.Date.Add(1 * time.Hour)

		rows, err := BuildLedger([]Transaction{late, early}, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, late.ID, rows[0].ID)
		assert.Equal(t, early.ID, rows[1].ID)
	})

	t.Run("input slice is not reordered", func(t *testing.T) {
		txs := []Transaction{
			tx("2025-02-01", KindInvoice, "1", "0"),
			tx("2025-01-01", KindInvoice, "2", "0"),
		}
		firstID := txs[0].ID
		_, err := BuildLedger(txs, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, firstID, txs[0].ID)
	})

	t.Run("a record with both debit and credit rejects the batch", func(t *testing.T) {
		bad := tx("2025-01-02", KindAdjustment, "10", "5")
		txs := []Transaction{
			tx("2025-01-01", KindInvoice, "100", "0"),
			bad,
		}
		rows, err := BuildLedger(txs, decimal.Zero)
		assert.Nil(t, rows)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidTransaction, shared.CodeOf(err))
		assert.Contains(t, err.Error(), bad.ID.String())
	})

	t.Run("negative amounts are rejected", func(t *testing.T) {
		_, err := BuildLedger([]Transaction{tx("2025-01-01", KindPayment, "-1", "0")}, decimal.Zero)
		assert.Equal(t, shared.CodeInvalidTransaction, shared.CodeOf(err))
	})
}

func TestBuildLedgerWithConvention_DebitPositive(t *testing.T) {
	txs := []Transaction{
		tx("2025-01-01", KindInvoice, "1000", "0"),
		tx("2025-01-10", KindRecovery, "0", "400"),
	}
	rows, err := BuildLedgerWithConvention(txs, dec("50"), DebitPositive)
	require.NoError(t, err)
	assert.True(t, rows[0].RunningBalance.Equal(dec("1050")))
	assert.True(t, rows[1].RunningBalance.Equal(dec("650")))
}

func TestSignConvention(t *testing.T) {
	invoice := tx("2025-01-01", KindInvoice, "120", "0")

	assert.Equal(t, "CREDIT_POSITIVE", CreditPositive.String())
	assert.Equal(t, "DEBIT_POSITIVE", DebitPositive.String())
	assert.True(t, CreditPositive.Delta(&invoice).Equal(dec("-120")))
	assert.True(t, DebitPositive.Delta(&invoice).Equal(dec("120")))
}

func TestSplitAtAndOpeningBalance(t *testing.T) {
	txs := []Transaction{
		tx("2025-01-01", KindInvoice, "100", "0"),
		tx("2025-01-31", KindInvoice, "50", "0"),
		tx("2025-02-01", KindRecovery, "0", "30"),
	}

	before, window := SplitAt(txs, day("2025-02-01"))
	assert.Len(t, before, 2)
	assert.Len(t, window, 1)

	opening := OpeningBalance(before, dec("10"), DebitPositive)
	assert.True(t, opening.Equal(dec("160")))

	before, window = SplitAt(txs, time.Time{})
	assert.Empty(t, before)
	assert.Len(t, window, 3)
}

func TestLedgerRow_Field(t *testing.T) {
	row := LedgerRow{Transaction: tx("2025-01-01", KindInvoice, "12.5", "0"), RunningBalance: dec("7")}
	assert.True(t, ParseAmount(row.Field("debit")).Equal(dec("12.5")))
	assert.True(t, ParseAmount(row.Field("running_balance")).Equal(dec("7")))
	assert.Nil(t, row.Field("unknown"))
}
