package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// QuotationStatusJobName is the name of the quotation status reconciliation job
const QuotationStatusJobName = "quotation_status_sync"

// DefaultJobTimeout bounds a single reconciliation run
const DefaultJobTimeout = 5 * time.Minute

// QuotationStatusReconciler re-derives the denormalized quotation status on
// deals. The interface keeps the job from importing the service package.
type QuotationStatusReconciler interface {
	// ReconcileDealStatuses repairs drifted deal quotation status mirrors.
	// Returns the number of deals corrected.
	ReconcileDealStatuses(ctx context.Context) (int, error)
}

// QuotationStatusJob runs the nightly reconciliation between deals and their
// latest quotation. Normal writes keep the mirror in sync transactionally;
// this job exists to repair drift from manual data fixes.
type QuotationStatusJob struct {
	reconciler QuotationStatusReconciler
	logger     *zap.Logger
	timeout    time.Duration
}

// NewQuotationStatusJob creates a new reconciliation job
func NewQuotationStatusJob(reconciler QuotationStatusReconciler, logger *zap.Logger, timeout time.Duration) *QuotationStatusJob {
	return &QuotationStatusJob{
		reconciler: reconciler,
		logger:     logger,
		timeout:    timeout,
	}
}

// Run executes one reconciliation pass. Called by the scheduler.
func (j *QuotationStatusJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	updated, err := j.reconciler.ReconcileDealStatuses(ctx)
	if err != nil {
		j.logger.Error("quotation status reconciliation failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("quotation status reconciliation completed",
		zap.Int("deals_updated", updated),
		zap.Duration("duration", time.Since(start)))
}

// RegisterQuotationStatusJob registers the reconciliation job with the
// scheduler under the given cron expression.
func RegisterQuotationStatusJob(scheduler *Scheduler, reconciler QuotationStatusReconciler, logger *zap.Logger, cronExpr string) error {
	job := NewQuotationStatusJob(reconciler, logger, DefaultJobTimeout)
	return scheduler.AddJob(QuotationStatusJobName, cronExpr, job.Run)
}
