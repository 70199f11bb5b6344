package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credit-portal/internal/domain/loan"
	"credit-portal/internal/infrastructure/monitoring"
)

// OverdueScanJob walks every stored loan once a night and publishes how
// many are past their projected due date. The projection is the same
// calendar-month arithmetic the portfolio view uses.
type OverdueScanJob struct {
	loanRepo loan.Repository
	logger   *slog.Logger
	now      func() time.Time
}

func NewOverdueScanJob(loanRepo loan.Repository, logger *slog.Logger) *OverdueScanJob {
	if loanRepo == nil || logger == nil {
		panic("OverdueScanJob dependencies cannot be nil")
	}
	return &OverdueScanJob{
		loanRepo: loanRepo,
		logger:   logger.With("job", "OverdueScan"),
		now:      time.Now,
	}
}

func (j *OverdueScanJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting overdue loan scan.")

	loans, err := j.loanRepo.ListAll(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list loans, aborting scan.", slog.Any("error", err))
		return fmt.Errorf("cannot run scan, failed to list loans: %w", err)
	}

	now := j.now()
	overdue := 0
	for _, l := range loans {
		if l.Status != loan.StatusActive {
			continue
		}
		if loan.NextDueDate(l.TakenDate, l.PaidMonths).Before(now) {
			overdue++
			j.logger.WarnContext(ctx, "Loan is overdue",
				slog.String("loanID", l.ID),
				slog.String("userID", l.UserID),
				slog.Time("dueDate", loan.NextDueDate(l.TakenDate, l.PaidMonths)))
		}
	}

	monitoring.SetOverdueLoans(overdue)
	j.logger.InfoContext(ctx, "Overdue loan scan finished.",
		slog.Int("scanned", len(loans)),
		slog.Int("overdue", overdue),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
