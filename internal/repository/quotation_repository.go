package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuotationFilters contains filter options for listing quotations
type QuotationFilters struct {
	Status      *domain.QuotationStatus
	RequestedBy *string
	DealID      *uuid.UUID
}

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(tx *gorm.DB, quotation *domain.Quotation) error {
	return tx.Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quotation_items.position ASC")
		}).
		Preload("Deal").
		Where("id = ?", id).
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// Save persists the quotation header within the given transaction
func (r *QuotationRepository) Save(tx *gorm.DB, quotation *domain.Quotation) error {
	return tx.Omit(clause.Associations).Save(quotation).Error
}

// ReplaceItems deletes and recreates the quotation lines within the given
// transaction. Positions are reassigned from slice order.
func (r *QuotationRepository) ReplaceItems(tx *gorm.DB, quotationID uuid.UUID, items []domain.QuotationItem) error {
	if err := tx.Where("quotation_id = ?", quotationID).Delete(&domain.QuotationItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ID = uuid.Nil
		items[i].QuotationID = quotationID
		items[i].Position = i
	}
	if len(items) == 0 {
		return nil
	}
	return tx.Create(&items).Error
}

func (r *QuotationRepository) List(ctx context.Context, filters *QuotationFilters) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quotation_items.position ASC")
		}).
		Preload("Deal")
	query = r.applyFilters(query, filters)
	err := query.Order("created_at DESC").Find(&quotations).Error
	return quotations, err
}

// GetLatestForDeal returns the most recently updated quotation of a deal
func (r *QuotationRepository) GetLatestForDeal(ctx context.Context, dealID uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quotation_items.position ASC")
		}).
		Where("deal_id = ?", dealID).
		Order("updated_at DESC").
		First(&quotation).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

// ListHeaders returns every quotation without associations, oldest update
// first, for status reconciliation
func (r *QuotationRepository) ListHeaders(ctx context.Context) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Order("updated_at ASC").
		Find(&quotations).Error
	return quotations, err
}

// CountPending returns the number of quotations awaiting review
func (r *QuotationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("status = ?", domain.QuotationPending).
		Count(&count).Error
	return count, err
}

// ListUnreadApproved returns approved, unread quotations requested by the
// given user, newest first
func (r *QuotationRepository) ListUnreadApproved(ctx context.Context, requestedBy string) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("quotation_items.position ASC")
		}).
		Preload("Deal").
		Where("requested_by = ? AND status = ? AND is_read = ?", requestedBy, domain.QuotationApproved, false).
		Order("updated_at DESC").
		Find(&quotations).Error
	return quotations, err
}

// CountUnreadApproved returns the unread approval count for a user
func (r *QuotationRepository) CountUnreadApproved(ctx context.Context, requestedBy string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("requested_by = ? AND status = ? AND is_read = ?", requestedBy, domain.QuotationApproved, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flags the given approved quotations as read. Ownership is part
// of the WHERE clause so a caller can never acknowledge another user's
// notifications, no matter which ids are submitted.
func (r *QuotationRepository) MarkAsRead(ctx context.Context, requestedBy string, ids []uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("id IN ? AND requested_by = ? AND status = ? AND is_read = ?", ids, requestedBy, domain.QuotationApproved, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// MarkAllAsRead flags every approved quotation of the given requester as
// read, with the same ownership scoping as MarkAsRead.
func (r *QuotationRepository) MarkAllAsRead(ctx context.Context, requestedBy string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("requested_by = ? AND status = ? AND is_read = ?", requestedBy, domain.QuotationApproved, false).
		Updates(map[string]interface{}{
			"is_read":    true,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// WithTransaction executes operations within a transaction
func (r *QuotationRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *QuotationRepository) applyFilters(query *gorm.DB, filters *QuotationFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	if filters.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filters.RequestedBy)
	}

	if filters.DealID != nil {
		query = query.Where("deal_id = ?", *filters.DealID)
	}

	return query
}
