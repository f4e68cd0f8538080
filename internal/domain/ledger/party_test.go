package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/internal/domain/shared"
)

func TestNewParty(t *testing.T) {
	t.Run("creates party with cash terms", func(t *testing.T) {
		p, err := NewParty(" cus-001 ", "Al Noor Traders", PartyTypeCustomer, dec("250"))
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, p.ID)
		assert.Equal(t, "CUS-001", p.Code)
		assert.Equal(t, PaymentTermsCash, p.PaymentTerms)
		assert.Equal(t, 1, p.Version)
		assert.True(t, p.Balance.Equal(dec("250")))
		assert.True(t, p.OpeningBalance.Equal(dec("250")))
		assert.False(t, p.IsArchived())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewParty("", "Name", PartyTypeCustomer, decimal.Zero)
		assert.Equal(t, "INVALID_CODE", shared.CodeOf(err))

		_, err = NewParty("C1", " ", PartyTypeCustomer, decimal.Zero)
		assert.Equal(t, "INVALID_NAME", shared.CodeOf(err))

		_, err = NewParty("C1", "Name", PartyType("VENDOR"), decimal.Zero)
		assert.Equal(t, "INVALID_TYPE", shared.CodeOf(err))
	})
}

func TestParty_SetTerms(t *testing.T) {
	p, err := NewParty("SUP-1", "Mill", PartyTypeSupplier, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, p.SetTerms(PaymentTermsCredit, 30, dec("5000000")))
	assert.True(t, p.OnCredit())
	assert.Equal(t, 30, p.CreditDaysLimit)
	assert.Equal(t, 2, p.Version)

	snap := p.Snapshot()
	assert.Equal(t, 30, snap.CreditDaysLimit)
	assert.True(t, snap.CreditCashLimit.Equal(dec("5000000")))
	assert.True(t, snap.OnCredit())

	assert.Equal(t, shared.CodeInvalidCreditDays, shared.CodeOf(p.SetTerms(PaymentTermsCredit, -1, decimal.Zero)))
	assert.Equal(t, shared.CodeInvalidCreditDays, shared.CodeOf(p.SetTerms(PaymentTermsCredit, 366, decimal.Zero)))
	assert.Equal(t, "INVALID_CREDIT_LIMIT", shared.CodeOf(p.SetTerms(PaymentTermsCredit, 10, dec("-1"))))
	assert.Equal(t, "INVALID_PAYMENT_TERMS", shared.CodeOf(p.SetTerms("LATER", 10, decimal.Zero)))
	assert.Equal(t, 30, p.CreditDaysLimit)
}

func TestParty_ApplyUsesPartyConvention(t *testing.T) {
	customer, err := NewParty("C1", "Customer", PartyTypeCustomer, dec("100"))
	require.NoError(t, err)
	supplier, err := NewParty("S1", "Supplier", PartyTypeSupplier, dec("100"))
	require.NoError(t, err)

	invoice := tx("2025-01-01", KindInvoice, "40", "0")
	invoice.PartyID = customer.ID
	require.NoError(t, customer.Apply(&invoice))
	assert.True(t, customer.Balance.Equal(dec("140")))
	assert.True(t, customer.Exposure(&invoice).Equal(dec("40")))

	recovery := tx("2025-01-02", KindRecovery, "0", "15")
	recovery.PartyID = customer.ID
	assert.True(t, customer.Exposure(&recovery).IsZero())
	require.NoError(t, customer.Apply(&recovery))
	assert.True(t, customer.Balance.Equal(dec("125")))

	grn := tx("2025-01-01", KindInvoice, "0", "60")
	grn.PartyID = supplier.ID
	assert.True(t, supplier.Exposure(&grn).Equal(dec("60")))
	require.NoError(t, supplier.Apply(&grn))
	assert.True(t, supplier.Balance.Equal(dec("160")))
}

func TestParty_ApplyRejects(t *testing.T) {
	p, err := NewParty("C1", "Customer", PartyTypeCustomer, decimal.Zero)
	require.NoError(t, err)

	foreign := tx("2025-01-01", KindInvoice, "10", "0")
	assert.Equal(t, shared.CodeInvalidTransaction, shared.CodeOf(p.Apply(&foreign)))

	require.NoError(t, p.Archive())
	own := tx("2025-01-01", KindInvoice, "10", "0")
	own.PartyID = p.ID
	assert.Equal(t, shared.CodePartyArchived, shared.CodeOf(p.Apply(&own)))
	assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(p.Archive()))
	assert.True(t, p.Balance.IsZero())
}

func TestParty_ApplyBatch(t *testing.T) {
	newBatch := func(p *Party) []*Transaction {
		a := tx("2025-01-01", KindInvoice, "40", "0")
		b := tx("2025-01-02", KindRecovery, "0", "10")
		c := tx("2025-01-03", KindInvoice, "25", "0")
		batch := []*Transaction{&a, &b, &c}
		for _, entry := range batch {
			entry.PartyID = p.ID
		}
		return batch
	}

	t.Run("moves the balance once", func(t *testing.T) {
		p, err := NewParty("C1", "Customer", PartyTypeCustomer, dec("100"))
		require.NoError(t, err)

		var seen []string
		err = p.ApplyBatch(newBatch(p), func(balance decimal.Decimal, _ *Transaction) error {
			seen = append(seen, balance.String())
			return nil
		})
		require.NoError(t, err)
		assert.True(t, p.Balance.Equal(dec("155")))
		assert.Equal(t, 2, p.Version)
		assert.Equal(t, []string{"100", "140", "130"}, seen)
	})

	t.Run("check failure leaves the party untouched", func(t *testing.T) {
		p, err := NewParty("C1", "Customer", PartyTypeCustomer, dec("100"))
		require.NoError(t, err)

		refused := shared.NewDomainError(shared.CodeCreditLimitExceeded, "over")
		err = p.ApplyBatch(newBatch(p), func(balance decimal.Decimal, _ *Transaction) error {
			if balance.GreaterThan(dec("135")) {
				return refused
			}
			return nil
		})
		assert.ErrorIs(t, err, refused)
		assert.True(t, p.Balance.Equal(dec("100")))
		assert.Equal(t, 1, p.Version)
	})

	t.Run("invalid transaction rejects the batch", func(t *testing.T) {
		p, err := NewParty("C1", "Customer", PartyTypeCustomer, dec("100"))
		require.NoError(t, err)
		batch := newBatch(p)
		batch[2].Debit = dec("-1")

		assert.Equal(t, shared.CodeInvalidTransaction, shared.CodeOf(p.ApplyBatch(batch, nil)))
		assert.True(t, p.Balance.Equal(dec("100")))
	})
}

func TestParty_CreditDaysFor(t *testing.T) {
	p, err := NewParty("C1", "Customer", PartyTypeCustomer, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, p.SetTerms(PaymentTermsCredit, 30, decimal.Zero))

	invoice := tx("2025-01-01", KindInvoice, "10", "0")
	assert.Equal(t, 30, p.CreditDaysFor(&invoice))
	require.NoError(t, invoice.WithCreditDays(7))
	assert.Equal(t, 7, p.CreditDaysFor(&invoice))
}
