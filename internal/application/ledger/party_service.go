package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PartyService handles party onboarding and terms
type PartyService struct {
	partyRepo   ledger.PartyRepository
	phoneRegion string
}

// NewPartyService creates a new PartyService. phoneRegion is the ISO region
// used for phone numbers entered without a country code.
func NewPartyService(partyRepo ledger.PartyRepository, phoneRegion string) *PartyService {
	return &PartyService{
		partyRepo:   partyRepo,
		phoneRegion: phoneRegion,
	}
}

// Create onboards a new party
func (s *PartyService) Create(ctx context.Context, req CreatePartyRequest) (*PartyResponse, error) {
	exists, err := s.partyRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Party with this code already exists")
	}

	party, err := ledger.NewParty(req.Code, req.Name, ledger.PartyType(req.Type), req.OpeningBalance)
	if err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(req.Phone, s.phoneRegion)
	if err != nil {
		return nil, err
	}
	party.Phone = phone

	terms := ledger.PaymentTerms(req.PaymentTerms)
	if terms == "" {
		terms = ledger.PaymentTermsCash
	}
	if err := party.SetTerms(terms, req.CreditDaysLimit, req.CreditCashLimit); err != nil {
		return nil, err
	}
	// Onboarding is a single insert; the edits above are not separate versions
	party.Version = 1

	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Party created",
		zap.String("party_id", party.ID.String()),
		zap.String("code", party.Code),
		zap.String("type", string(party.Type)),
	)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// GetByID returns a party
func (s *PartyService) GetByID(ctx context.Context, id uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPartyResponse(party)
	return &resp, nil
}

// List returns one page of parties
func (s *PartyService) List(ctx context.Context, filter PartyListFilter) (*PartyListResult, error) {
	base := shared.DefaultFilter()
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		base.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		base.OrderDir = filter.OrderDir
	}
	base.Search = filter.Search

	partyType := ledger.PartyType(filter.Type)
	if filter.Type != "" && !partyType.IsValid() {
		return nil, shared.NewValidationError("Invalid party type: " + filter.Type)
	}

	parties, total, err := s.partyRepo.FindAll(ctx, ledger.PartyFilter{
		Filter:          base,
		Type:            partyType,
		IncludeArchived: filter.IncludeArchived,
	})
	if err != nil {
		return nil, err
	}

	items := make([]PartyResponse, len(parties))
	for i := range parties {
		items[i] = ToPartyResponse(&parties[i])
	}
	return &PartyListResult{
		Items:    items,
		Total:    total,
		Page:     base.Page,
		PageSize: base.Limit(),
	}, nil
}

// UpdateTerms changes a party's payment terms and limits
func (s *PartyService) UpdateTerms(ctx context.Context, id uuid.UUID, req UpdateTermsRequest) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := party.SetTerms(ledger.PaymentTerms(req.PaymentTerms), req.CreditDaysLimit, req.CreditCashLimit); err != nil {
		return nil, err
	}
	if err := s.partyRepo.SaveWithLock(ctx, party); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Party terms updated",
		zap.String("party_id", party.ID.String()),
		zap.String("payment_terms", string(party.PaymentTerms)),
		zap.Int("credit_days_limit", party.CreditDaysLimit),
		zap.String("credit_cash_limit", party.CreditCashLimit.String()),
	)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// Archive soft-deletes a party. Its history stays in reports.
func (s *PartyService) Archive(ctx context.Context, id uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := party.Archive(); err != nil {
		return nil, err
	}
	if err := s.partyRepo.SaveWithLock(ctx, party); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Party archived", zap.String("party_id", party.ID.String()))

	resp := ToPartyResponse(party)
	return &resp, nil
}
