package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/venditio/crm-api/internal/domain"
	"gorm.io/gorm"
)

// NumberSequenceRepository handles database operations for per-day document
// number sequences (deal numbers and the like).
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for a
// prefix/date. If no sequence exists yet, one is created starting at 1.
// The unique index on (prefix, date) plus the transaction keeps numbers
// unique at this write rate.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, prefix, date string) (int, error) {
	var seq domain.NumberSequence
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("prefix = ? AND date = ?", prefix, date).First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Prefix:    prefix,
				Date:      date,
				LastValue: 1,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			nextSeq = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			nextSeq = seq.LastValue + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_value": nextSeq,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return nextSeq, nil
}

// GetCurrentValue retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the prefix/date.
func (r *NumberSequenceRepository) GetCurrentValue(ctx context.Context, prefix, date string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("prefix = ? AND date = ?", prefix, date).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastValue, nil
}
