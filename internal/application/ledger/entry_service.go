package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/lock"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"github.com/tradebooks/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// EntryService posts transactions to party ledgers behind the credit guard
type EntryService struct {
	partyRepo    ledger.PartyRepository
	uow          ledger.UnitOfWork
	locker       lock.PartyLocker
	defaultLimit decimal.Decimal
	metrics      Metrics
}

// EntryServiceOption configures an EntryService
type EntryServiceOption func(*EntryService)

// WithDefaultCreditCeiling sets the ceiling for credit parties that have no
// limit of their own. Zero leaves those parties unguarded.
func WithDefaultCreditCeiling(ceiling decimal.Decimal) EntryServiceOption {
	return func(s *EntryService) {
		s.defaultLimit = ceiling
	}
}

// WithMetrics sets the business metrics recorder
func WithMetrics(m Metrics) EntryServiceOption {
	return func(s *EntryService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewEntryService creates a new EntryService
func NewEntryService(
	partyRepo ledger.PartyRepository,
	uow ledger.UnitOfWork,
	locker lock.PartyLocker,
	opts ...EntryServiceOption,
) *EntryService {
	s := &EntryService{
		partyRepo:    partyRepo,
		uow:          uow,
		locker:       locker,
		defaultLimit: decimal.Zero,
		metrics:      noopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordEntry validates a transaction, runs the credit guard against the
// party's current balance and, if allowed, appends the transaction and moves
// the balance in one database transaction. The party lock is held from the
// balance read to the commit.
func (s *EntryService) RecordEntry(ctx context.Context, partyID uuid.UUID, req RecordEntryRequest) (*EntryResult, error) {
	tx, err := newEntryTransaction(partyID, req)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_entry", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyID, partyID,
		telemetry.SpanAttrKind, tx.Kind,
		telemetry.SpanAttrAmount, tx.Amount(),
	)

	ctx = logger.WithPartyID(ctx, partyID.String())
	log := logger.L(ctx)

	release, err := s.locker.Lock(ctx, partyID)
	if err != nil {
		log.Warn("Party lock not obtained", zap.Error(err))
		return nil, err
	}
	defer release()

	var (
		party *ledger.Party
		check *CreditCheckResponse
	)
	err = s.uow.Do(ctx, func(parties ledger.PartyRepository, txs ledger.TransactionRepository) error {
		var err error
		party, err = parties.FindByID(ctx, partyID)
		if err != nil {
			return err
		}
		if party.IsArchived() {
			return shared.NewDomainError(shared.CodePartyArchived, "Party is archived and cannot take new transactions")
		}

		decision, enforced := s.evaluate(party.Snapshot(), party.Exposure(tx))
		if enforced {
			check = toCreditCheck(party, party.Exposure(tx), decision)
			s.metrics.RecordGuardDecision(ctx, string(party.Type), decision.Allowed)
			if !decision.Allowed {
				telemetry.AddEvent(span, telemetry.EventGuardRefused,
					telemetry.SpanAttrCeiling, decision.Ceiling,
					telemetry.SpanAttrWouldBe, decision.WouldBeBalance,
				)
				return decision.Err()
			}
		}

		if err := party.Apply(tx); err != nil {
			return err
		}
		if err := txs.Create(ctx, tx); err != nil {
			return err
		}
		return parties.SaveWithLock(ctx, party)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if shared.CodeOf(err) == shared.CodeCreditLimitExceeded {
			log.Info("Entry refused by credit guard",
				zap.String("kind", string(tx.Kind)),
				zap.String("amount", tx.Amount().String()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.RecordEntry(ctx, string(party.Type), string(tx.Kind))
	log.Info("Entry recorded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("kind", string(tx.Kind)),
		zap.String("debit", tx.Debit.String()),
		zap.String("credit", tx.Credit.String()),
		zap.String("balance", party.Balance.String()),
	)

	return &EntryResult{
		Transaction: ToTransactionResponse(tx),
		Balance:     party.Balance,
		CreditCheck: check,
	}, nil
}

// ImportEntries posts a batch of entries to one party. The batch is atomic:
// a single invalid entry or credit guard refusal rejects all of them. The
// guard sees the balance as moved by the entries before each one.
func (s *EntryService) ImportEntries(ctx context.Context, partyID uuid.UUID, reqs []RecordEntryRequest) (*ImportEntriesResult, error) {
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("At least one entry is required")
	}
	batch := make([]*ledger.Transaction, len(reqs))
	lines := make(map[uuid.UUID]int, len(reqs))
	for i, req := range reqs {
		line := req.Line
		if line == 0 {
			line = i + 1
		}
		tx, err := newEntryTransaction(partyID, req)
		if err != nil {
			return nil, atLine(line, err)
		}
		batch[i] = tx
		lines[tx.ID] = line
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "ledger_entry", "import")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPartyID, partyID,
		telemetry.SpanAttrRows, len(batch),
	)

	ctx = logger.WithPartyID(ctx, partyID.String())
	log := logger.L(ctx)

	release, err := s.locker.Lock(ctx, partyID)
	if err != nil {
		log.Warn("Party lock not obtained", zap.Error(err))
		return nil, err
	}
	defer release()

	var party *ledger.Party
	err = s.uow.Do(ctx, func(parties ledger.PartyRepository, txs ledger.TransactionRepository) error {
		var err error
		party, err = parties.FindByID(ctx, partyID)
		if err != nil {
			return err
		}

		err = party.ApplyBatch(batch, func(balance decimal.Decimal, tx *ledger.Transaction) error {
			snap := party.Snapshot()
			snap.Balance = balance
			decision, enforced := s.evaluate(snap, party.Exposure(tx))
			if !enforced {
				return nil
			}
			s.metrics.RecordGuardDecision(ctx, string(party.Type), decision.Allowed)
			if !decision.Allowed {
				telemetry.AddEvent(span, telemetry.EventGuardRefused,
					telemetry.SpanAttrCeiling, decision.Ceiling,
					telemetry.SpanAttrWouldBe, decision.WouldBeBalance,
					telemetry.SpanAttrLine, lines[tx.ID],
				)
				return atLine(lines[tx.ID], decision.Err())
			}
			return nil
		})
		if err != nil {
			return err
		}

		// Same-day rows are read back in created_at order, so the batch gets
		// one microsecond per row to keep file order.
		posted := time.Now().UTC().Truncate(time.Microsecond)
		for i, tx := range batch {
			tx.CreatedAt = posted.Add(time.Duration(i) * time.Microsecond)
			if err := txs.Create(ctx, tx); err != nil {
				return err
			}
		}
		return parties.SaveWithLock(ctx, party)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		log.Info("Entry import rejected", zap.Int("entries", len(batch)), zap.Error(err))
		return nil, err
	}

	result := &ImportEntriesResult{
		Imported:     len(batch),
		Transactions: make([]TransactionResponse, len(batch)),
		Balance:      party.Balance,
	}
	for i, tx := range batch {
		s.metrics.RecordEntry(ctx, string(party.Type), string(tx.Kind))
		result.Transactions[i] = ToTransactionResponse(tx)
	}
	log.Info("Entries imported",
		zap.Int("entries", len(batch)),
		zap.String("balance", party.Balance.String()),
	)
	return result, nil
}

// CheckCredit runs the credit guard for a proposed amount without recording
// anything. Amount is the increase in what the party owes (or is owed).
func (s *EntryService) CheckCredit(ctx context.Context, partyID uuid.UUID, amount decimal.Decimal) (*CreditCheckResponse, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Amount cannot be negative")
	}
	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, err
	}

	decision, enforced := s.evaluate(party.Snapshot(), amount)
	if enforced {
		s.metrics.RecordGuardDecision(ctx, string(party.Type), decision.Allowed)
	}
	resp := toCreditCheck(party, amount, decision)
	resp.Enforced = enforced
	return resp, nil
}

// SettleInvoice records the date an invoice was paid or recovered
func (s *EntryService) SettleInvoice(ctx context.Context, txID uuid.UUID, settledOn time.Time) (*TransactionResponse, error) {
	var settled *ledger.Transaction
	err := s.uow.Do(ctx, func(_ ledger.PartyRepository, txs ledger.TransactionRepository) error {
		tx, err := txs.FindByID(ctx, txID)
		if err != nil {
			return err
		}
		if err := tx.Settle(settledOn); err != nil {
			return err
		}
		if err := txs.MarkSettled(ctx, tx.ID, *tx.SettledOn); err != nil {
			return err
		}
		settled = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Invoice settled",
		zap.String("transaction_id", settled.ID.String()),
		zap.String("party_id", settled.PartyID.String()),
		zap.String("settled_on", settled.SettledOn.Format(ledger.DateLayout)),
	)

	resp := ToTransactionResponse(settled)
	return &resp, nil
}

// evaluate runs the guard for credit parties with a ceiling against the
// snapshot balance. The second result is false when the guard does not apply,
// in which case the decision is an unconditional allow.
func (s *EntryService) evaluate(snap ledger.PartyBalance, exposure decimal.Decimal) (ledger.LimitDecision, bool) {
	ceiling := s.ceilingFor(snap)
	if !snap.OnCredit() || !ceiling.IsPositive() || !exposure.IsPositive() {
		return ledger.LimitDecision{
			Allowed:        true,
			WouldBeBalance: snap.Balance.Add(exposure),
			Ceiling:        ceiling,
		}, false
	}
	return ledger.CheckLimit(snap.Balance, exposure, ceiling), true
}

func (s *EntryService) ceilingFor(snap ledger.PartyBalance) decimal.Decimal {
	if snap.CreditCashLimit.IsPositive() {
		return snap.CreditCashLimit
	}
	return s.defaultLimit
}

func toCreditCheck(party *ledger.Party, proposed decimal.Decimal, d ledger.LimitDecision) *CreditCheckResponse {
	return &CreditCheckResponse{
		Allowed:        d.Allowed,
		Enforced:       true,
		CurrentBalance: party.Balance,
		Proposed:       proposed,
		WouldBeBalance: d.WouldBeBalance,
		Ceiling:        d.Ceiling,
	}
}

func newEntryTransaction(partyID uuid.UUID, req RecordEntryRequest) (*ledger.Transaction, error) {
	tx, err := ledger.NewTransaction(partyID, req.Date, ledger.TransactionKind(req.Kind), req.Debit, req.Credit, req.Description)
	if err != nil {
		return nil, err
	}
	tx.Reference = req.Reference
	if req.CreditDays != nil {
		if err := tx.WithCreditDays(*req.CreditDays); err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// atLine prefixes a domain error with the batch line it came from, keeping its code
func atLine(line int, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return shared.NewDomainError(domainErr.Code, fmt.Sprintf("Row %d: %s", line, domainErr.Message))
	}
	return fmt.Errorf("row %d: %w", line, err)
}
