package service

import (
	"context"
	"fmt"
	"time"

	"github.com/venditio/crm-api/internal/repository"
	"go.uber.org/zap"
)

// dealNumberPrefix is the prefix for opportunity numbers
const dealNumberPrefix = "OPP"

// NumberSequenceService generates unique, human readable document numbers.
//
// Format: {PREFIX}-{YYMMDD}-{SEQUENCE}
// Example: OPP-250829-0001
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateDealNumber generates a unique deal number. The sequence resets each
// day; uniqueness holds within a prefix/day.
func (s *NumberSequenceService) GenerateDealNumber(ctx context.Context) (string, error) {
	return s.generateNumber(ctx, dealNumberPrefix)
}

func (s *NumberSequenceService) generateNumber(ctx context.Context, prefix string) (string, error) {
	date := time.Now().Format("060102")

	nextSeq, err := s.repo.GetNextNumber(ctx, prefix, date)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.String("prefix", prefix),
			zap.String("date", date),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate %s number: %w", prefix, err)
	}

	number := fmt.Sprintf("%s-%s-%04d", prefix, date, nextSeq)

	s.logger.Info("generated number",
		zap.String("number", number),
		zap.String("prefix", prefix),
		zap.String("date", date),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GetCurrentValue returns today's sequence value for the deal prefix without
// incrementing it. Returns 0 if no number has been issued today.
func (s *NumberSequenceService) GetCurrentValue(ctx context.Context) (int, error) {
	return s.repo.GetCurrentValue(ctx, dealNumberPrefix, time.Now().Format("060102"))
}
