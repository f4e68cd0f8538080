package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tradebooks/backend/internal/domain/ledger"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockPartyRepository is a mock implementation of ledger.PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Party), args.Error(1)
}

func (m *MockPartyRepository) FindByCode(ctx context.Context, code string) (*ledger.Party, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Party), args.Error(1)
}

func (m *MockPartyRepository) FindAll(ctx context.Context, filter ledger.PartyFilter) ([]ledger.Party, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ledger.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Party, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*ledger.Party), args.Error(1)
}

func (m *MockPartyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockPartyRepository) Create(ctx context.Context, party *ledger.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) SaveWithLock(ctx context.Context, party *ledger.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of ledger.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByParty(ctx context.Context, partyID uuid.UUID, to time.Time) ([]ledger.Transaction, error) {
	args := m.Called(ctx, partyID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindInvoices(ctx context.Context, filter ledger.InvoiceFilter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) MarkSettled(ctx context.Context, id uuid.UUID, settledOn time.Time) error {
	args := m.Called(ctx, id, settledOn)
	return args.Error(0)
}

// passThroughUnitOfWork runs fn directly against the mock repositories
type passThroughUnitOfWork struct {
	parties ledger.PartyRepository
	txs     ledger.TransactionRepository
}

func (u passThroughUnitOfWork) Do(_ context.Context, fn func(ledger.PartyRepository, ledger.TransactionRepository) error) error {
	return fn(u.parties, u.txs)
}

// MockMetrics records business metric calls
type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordGuardDecision(ctx context.Context, partyType string, allowed bool) {
	m.Called(ctx, partyType, allowed)
}

func (m *MockMetrics) RecordEntry(ctx context.Context, partyType, kind string) {
	m.Called(ctx, partyType, kind)
}

// MockExporter is a mock AgingExporter
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportAging(report *AgingReport) ([]byte, error) {
	args := m.Called(report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExporter) ContentType() string { return "application/test" }
func (m *MockExporter) Extension() string   { return ".xlsx" }
