package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealFilters contains filter options for listing deals
type DealFilters struct {
	Stage           *domain.DealStage
	QuotationStatus *domain.QuotationStatus
	OwnerID         *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	SearchQuery     *string
}

// DealSortOption represents available sort options
type DealSortOption string

const (
	DealSortByCreatedDesc DealSortOption = "created_desc"
	DealSortByCreatedAsc  DealSortOption = "created_asc"
	DealSortByRevenueDesc DealSortOption = "revenue_desc"
	DealSortByRevenueAsc  DealSortOption = "revenue_asc"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	// Omit associations to avoid GORM trying to validate related records
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Documents").
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deal).Error
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deal{}, "id = ?", id).Error
}

func (r *DealRepository) List(ctx context.Context, page, pageSize int, filters *DealFilters, sortBy DealSortOption) ([]domain.Deal, int64, error) {
	var deals []domain.Deal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Deal{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Find(&deals).Error

	return deals, total, err
}

// ListAll returns every deal without associations, for reconciliation jobs
func (r *DealRepository) ListAll(ctx context.Context) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).Find(&deals).Error
	return deals, err
}

// GetByOwner returns all deals owned by a specific user
func (r *DealRepository) GetByOwner(ctx context.Context, ownerID string) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&deals).Error
	return deals, err
}

// GetPipelineStats returns deal count and revenue grouped by stage
func (r *DealRepository) GetPipelineStats(ctx context.Context, ownerID *string) ([]domain.PipelineStageStatsDTO, error) {
	query := r.db.WithContext(ctx).Model(&domain.Deal{}).
		Select("stage, COUNT(*) as count, COALESCE(SUM(expected_revenue), 0) as total_revenue").
		Group("stage")
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}

	var results []domain.PipelineStageStatsDTO
	err := query.Scan(&results).Error
	return results, err
}

// UpdateQuotationStatus sets the denormalized quotation status mirror on a
// deal. Callers run this inside the same transaction as the quotation write.
func (r *DealRepository) UpdateQuotationStatus(tx *gorm.DB, id uuid.UUID, status domain.QuotationStatus) error {
	return tx.Model(&domain.Deal{}).Where("id = ?", id).Updates(map[string]interface{}{
		"quotation_status": status,
		"updated_at":       time.Now(),
	}).Error
}

// WithTransaction executes operations within a transaction
func (r *DealRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *DealRepository) applyFilters(query *gorm.DB, filters *DealFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}

	if filters.QuotationStatus != nil {
		query = query.Where("quotation_status = ?", *filters.QuotationStatus)
	}

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}

	if filters.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filters.CreatedAfter)
	}

	if filters.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filters.CreatedBefore)
	}

	if filters.SearchQuery != nil && *filters.SearchQuery != "" {
		searchPattern := "%" + strings.ToLower(*filters.SearchQuery) + "%"
		query = query.Where("LOWER(customer_name) LIKE ? OR LOWER(deal_number) LIKE ?", searchPattern, searchPattern)
	}

	return query
}

func (r *DealRepository) applySorting(query *gorm.DB, sortBy DealSortOption) *gorm.DB {
	switch sortBy {
	case DealSortByCreatedAsc:
		return query.Order("created_at ASC")
	case DealSortByRevenueDesc:
		return query.Order("expected_revenue DESC")
	case DealSortByRevenueAsc:
		return query.Order("expected_revenue ASC")
	default: // DealSortByCreatedDesc
		return query.Order("created_at DESC")
	}
}
