package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
)

func newTestParty(t *testing.T, partyType ledger.PartyType) *ledger.Party {
	t.Helper()
	party, err := ledger.NewParty("P001", "Test Party", partyType, decimal.Zero)
	require.NoError(t, err)
	return party
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{"empty stays empty", "  ", "PK", "", false},
		{"international format ignores region", "+1 650-253-0000", "PK", "+16502530000", false},
		{"national format uses region", "(650) 253-0000", "us", "+16502530000", false},
		{"too short is invalid", "12345", "US", "", true},
		{"letters cannot be parsed", "call me", "US", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw, tt.region)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "INVALID_PHONE", shared.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartyService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a credit customer", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		repo.On("ExistsByCode", ctx, "c001").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*ledger.Party")).Return(nil)

		resp, err := svc.Create(ctx, CreatePartyRequest{
			Code:            "c001",
			Name:            "Acme Traders",
			Type:            "CUSTOMER",
			Phone:           "(650) 253-0000",
			PaymentTerms:    "CREDIT",
			CreditDaysLimit: 30,
			CreditCashLimit: decimal.NewFromInt(50000),
			OpeningBalance:  decimal.NewFromInt(1200),
		})
		require.NoError(t, err)
		assert.Equal(t, "C001", resp.Code)
		assert.Equal(t, "+16502530000", resp.Phone)
		assert.Equal(t, "CREDIT", resp.PaymentTerms)
		assert.Equal(t, 30, resp.CreditDaysLimit)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1200)))
		assert.Equal(t, 1, resp.Version)
		repo.AssertExpectations(t)
	})

	t.Run("defaults to cash terms", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		repo.On("ExistsByCode", ctx, "S001").Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*ledger.Party")).Return(nil)

		resp, err := svc.Create(ctx, CreatePartyRequest{Code: "S001", Name: "Mill", Type: "SUPPLIER"})
		require.NoError(t, err)
		assert.Equal(t, "CASH", resp.PaymentTerms)
		assert.Empty(t, resp.Phone)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		repo.On("ExistsByCode", ctx, "C001").Return(true, nil)

		_, err := svc.Create(ctx, CreatePartyRequest{Code: "C001", Name: "Dup", Type: "CUSTOMER"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeAlreadyExists, shared.CodeOf(err))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid credit days", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		repo.On("ExistsByCode", ctx, "C002").Return(false, nil)

		_, err := svc.Create(ctx, CreatePartyRequest{Code: "C002", Name: "X", Type: "CUSTOMER", PaymentTerms: "CREDIT", CreditDaysLimit: 400})
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidCreditDays, shared.CodeOf(err))
	})

	t.Run("rejects invalid phone", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		repo.On("ExistsByCode", ctx, "C003").Return(false, nil)

		_, err := svc.Create(ctx, CreatePartyRequest{Code: "C003", Name: "X", Type: "CUSTOMER", Phone: "12"})
		require.Error(t, err)
		assert.Equal(t, "INVALID_PHONE", shared.CodeOf(err))
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")

		dbErr := errors.New("db down")
		repo.On("ExistsByCode", ctx, "C004").Return(false, dbErr)

		_, err := svc.Create(ctx, CreatePartyRequest{Code: "C004", Name: "X", Type: "CUSTOMER"})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPartyService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("maps filter and results", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")
		party := newTestParty(t, ledger.PartyTypeSupplier)

		repo.On("FindAll", ctx, mock.MatchedBy(func(f ledger.PartyFilter) bool {
			return f.Type == ledger.PartyTypeSupplier && f.Page == 2 && f.PageSize == 10 && f.Search == "mill" && f.IncludeArchived
		})).Return([]ledger.Party{*party}, int64(11), nil)

		result, err := svc.List(ctx, PartyListFilter{Page: 2, PageSize: 10, Search: "mill", Type: "SUPPLIER", IncludeArchived: true})
		require.NoError(t, err)
		assert.Equal(t, int64(11), result.Total)
		assert.Equal(t, 2, result.Page)
		assert.Equal(t, 10, result.PageSize)
		require.Len(t, result.Items, 1)
		assert.Equal(t, party.ID, result.Items[0].ID)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc := NewPartyService(new(MockPartyRepository), "US")
		_, err := svc.List(ctx, PartyListFilter{Type: "VENDOR"})
		require.Error(t, err)
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestPartyService_UpdateTermsAndArchive(t *testing.T) {
	ctx := context.Background()

	t.Run("updates terms with optimistic save", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")
		party := newTestParty(t, ledger.PartyTypeCustomer)

		repo.On("FindByID", ctx, party.ID).Return(party, nil)
		repo.On("SaveWithLock", ctx, party).Return(nil)

		resp, err := svc.UpdateTerms(ctx, party.ID, UpdateTermsRequest{
			PaymentTerms:    "CREDIT",
			CreditDaysLimit: 45,
			CreditCashLimit: decimal.NewFromInt(9000),
		})
		require.NoError(t, err)
		assert.Equal(t, 45, resp.CreditDaysLimit)
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("surfaces optimistic lock conflict", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")
		party := newTestParty(t, ledger.PartyTypeCustomer)

		conflict := shared.NewDomainError(shared.CodeOptimisticLock, "modified")
		repo.On("FindByID", ctx, party.ID).Return(party, nil)
		repo.On("SaveWithLock", ctx, party).Return(conflict)

		_, err := svc.UpdateTerms(ctx, party.ID, UpdateTermsRequest{PaymentTerms: "CASH"})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("archives once", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")
		party := newTestParty(t, ledger.PartyTypeCustomer)

		repo.On("FindByID", ctx, party.ID).Return(party, nil)
		repo.On("SaveWithLock", ctx, party).Return(nil).Once()

		resp, err := svc.Archive(ctx, party.ID)
		require.NoError(t, err)
		assert.True(t, resp.Archived)

		_, err = svc.Archive(ctx, party.ID)
		require.Error(t, err)
		assert.Equal(t, shared.CodeInvalidState, shared.CodeOf(err))
	})

	t.Run("unknown party is not found", func(t *testing.T) {
		repo := new(MockPartyRepository)
		svc := NewPartyService(repo, "US")
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Party"))

		_, err := svc.GetByID(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
