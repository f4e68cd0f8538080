package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/tradebooks/backend/internal/domain/ledger"
	"github.com/tradebooks/backend/internal/domain/shared"
	"github.com/tradebooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartyRepository implements ledger.PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormPartyRepository) WithTx(tx *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: tx}
}

// FindByID finds a party by ID
func (r *GormPartyRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Party")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a party by its unique code
func (r *GormPartyRepository) FindByCode(ctx context.Context, code string) (*ledger.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).First(&model, "code = ?", strings.ToUpper(code)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("Party")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists parties matching the filter and returns the unpaged total
func (r *GormPartyRepository) FindAll(ctx context.Context, filter ledger.PartyFilter) ([]ledger.Party, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PartyModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if !filter.IncludeArchived {
		query = query.Where("archived_at IS NULL")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PartySortFields, "code")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var partyModels []models.PartyModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&partyModels).Error; err != nil {
		return nil, 0, err
	}

	parties := make([]ledger.Party, len(partyModels))
	for i := range partyModels {
		parties[i] = *partyModels[i].ToDomain()
	}
	return parties, total, nil
}

// FindByIDs returns the parties with the given IDs keyed by ID
func (r *GormPartyRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*ledger.Party, error) {
	result := make(map[uuid.UUID]*ledger.Party, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var partyModels []models.PartyModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&partyModels).Error; err != nil {
		return nil, err
	}
	for i := range partyModels {
		p := partyModels[i].ToDomain()
		result[p.ID] = p
	}
	return result, nil
}

// ExistsByCode checks whether a party code is taken
func (r *GormPartyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PartyModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new party
func (r *GormPartyRepository) Create(ctx context.Context, party *ledger.Party) error {
	return r.db.WithContext(ctx).Create(models.PartyModelFromDomain(party)).Error
}

// SaveWithLock saves a party with optimistic locking (version check).
// Returns OPTIMISTIC_LOCK_ERROR if the row changed since it was loaded.
func (r *GormPartyRepository) SaveWithLock(ctx context.Context, party *ledger.Party) error {
	model := models.PartyModelFromDomain(party)
	result := r.db.WithContext(ctx).
		Model(&models.PartyModel{}).
		Where("id = ? AND version = ?", party.ID, party.Version-1).
		Select("*").
		Omit("id", "created_at").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeOptimisticLock, "The party record has been modified by another transaction")
	}
	return nil
}

var _ ledger.PartyRepository = (*GormPartyRepository)(nil)
