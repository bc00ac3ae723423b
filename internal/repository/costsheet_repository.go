package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CostSheetRepository struct {
	db *gorm.DB
}

func NewCostSheetRepository(db *gorm.DB) *CostSheetRepository {
	return &CostSheetRepository{db: db}
}

// GetLatestForDeal returns the cost sheet version flagged as latest
func (r *CostSheetRepository) GetLatestForDeal(ctx context.Context, dealID uuid.UUID) (*domain.CostSheet, error) {
	var sheet domain.CostSheet
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Manpower").
		Preload("Charges").
		Where("deal_id = ? AND is_latest = ?", dealID, true).
		First(&sheet).Error
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// ListVersions returns every cost sheet version of a deal, newest first
func (r *CostSheetRepository) ListVersions(ctx context.Context, dealID uuid.UUID) ([]domain.CostSheet, error) {
	var sheets []domain.CostSheet
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Manpower").
		Preload("Charges").
		Where("deal_id = ?", dealID).
		Order("version DESC").
		Find(&sheets).Error
	return sheets, err
}

// Create inserts a cost sheet with its children within the given transaction
func (r *CostSheetRepository) Create(tx *gorm.DB, sheet *domain.CostSheet) error {
	return tx.Create(sheet).Error
}

// Save updates the header within the given transaction
func (r *CostSheetRepository) Save(tx *gorm.DB, sheet *domain.CostSheet) error {
	return tx.Omit(clause.Associations).Save(sheet).Error
}

// ReplaceChildren deletes and recreates product, manpower and charge lines
// within the given transaction
func (r *CostSheetRepository) ReplaceChildren(tx *gorm.DB, sheet *domain.CostSheet) error {
	if err := tx.Where("cost_sheet_id = ?", sheet.ID).Delete(&domain.CostSheetProduct{}).Error; err != nil {
		return err
	}
	if err := tx.Where("cost_sheet_id = ?", sheet.ID).Delete(&domain.CostSheetManpower{}).Error; err != nil {
		return err
	}
	if err := tx.Where("cost_sheet_id = ?", sheet.ID).Delete(&domain.CostSheetCharge{}).Error; err != nil {
		return err
	}

	for i := range sheet.Products {
		sheet.Products[i].ID = uuid.Nil
		sheet.Products[i].CostSheetID = sheet.ID
	}
	for i := range sheet.Manpower {
		sheet.Manpower[i].ID = uuid.Nil
		sheet.Manpower[i].CostSheetID = sheet.ID
	}
	for i := range sheet.Charges {
		sheet.Charges[i].ID = uuid.Nil
		sheet.Charges[i].CostSheetID = sheet.ID
	}

	if len(sheet.Products) > 0 {
		if err := tx.Create(&sheet.Products).Error; err != nil {
			return err
		}
	}
	if len(sheet.Manpower) > 0 {
		if err := tx.Create(&sheet.Manpower).Error; err != nil {
			return err
		}
	}
	if len(sheet.Charges) > 0 {
		if err := tx.Create(&sheet.Charges).Error; err != nil {
			return err
		}
	}
	return nil
}

// ClearLatest unflags the current latest version for a deal within the given
// transaction, ahead of inserting a new latest version
func (r *CostSheetRepository) ClearLatest(tx *gorm.DB, dealID uuid.UUID) error {
	return tx.Model(&domain.CostSheet{}).
		Where("deal_id = ? AND is_latest = ?", dealID, true).
		Update("is_latest", false).Error
}

// WithTransaction executes operations within a transaction
func (r *CostSheetRepository) WithTransaction(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
