package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"credit-portal/internal/config"
	"credit-portal/internal/domain/offer"
	"credit-portal/internal/event"
	"credit-portal/internal/infrastructure/monitoring"
	"credit-portal/internal/pkg/apperrors"
)

// CreditAttacher records a freshly originated loan id on the owning user
// document. Satisfied by the user service; an interface here keeps the
// loan package from importing it.
type CreditAttacher interface {
	AttachCredit(ctx context.Context, userID, loanID string) error
}

type Service interface {
	// TakeLoan originates a loan from a catalog offer. The limit is
	// enforced by the store in the same operation as the insert, so two
	// concurrent originations cannot both slip under the cap.
	TakeLoan(ctx context.Context, userID, offerID string, limit int) (*ActiveLoan, error)

	// ListLoans returns the caller's loans, never another user's.
	ListLoans(ctx context.Context, userID string) ([]ActiveLoan, error)

	GetPortfolio(ctx context.Context, userID string, limit int) (PortfolioSummary, error)

	EditLoan(ctx context.Context, userID, loanID string, newAmount float64, newTerm int, limit int) (ActiveLoan, error)

	// RepayLoan closes a loan early by deleting it.
	RepayLoan(ctx context.Context, userID, loanID string) error

	// RecordMonthlyPayment marks one installment as paid, closing the
	// loan when the full term is reached.
	RecordMonthlyPayment(ctx context.Context, userID, loanID string) (ActiveLoan, error)

	// ChangeLoanLimit validates a requested limit against the configured
	// bounds and the caller's current loan count. The limit is
	// session-scoped; nothing is persisted.
	ChangeLoanLimit(ctx context.Context, userID string, newLimit int) (int, error)
}

var _ Service = (*loanService)(nil)

type loanService struct {
	repo     Repository
	offers   offer.Repository
	attacher CreditAttacher
	pub      event.Publisher
	cfg      config.PortfolioConfig
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, offers offer.Repository, attacher CreditAttacher, pub event.Publisher, cfg config.PortfolioConfig, logger *slog.Logger) Service {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	if offers == nil {
		panic("offer repository cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	return &loanService{
		repo:     repo,
		offers:   offers,
		attacher: attacher,
		pub:      pub,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "loanService")),
		now:      time.Now,
	}
}

func (s *loanService) normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return s.cfg.DefaultLoanLimit, nil
	}
	if limit < s.cfg.MinLoanLimit || limit > s.cfg.MaxLoanLimit {
		return 0, apperrors.NewValidationError("limit",
			fmt.Sprintf("loan limit must be between %d and %d", s.cfg.MinLoanLimit, s.cfg.MaxLoanLimit))
	}
	return limit, nil
}

func (s *loanService) TakeLoan(ctx context.Context, userID, offerID string, limit int) (*ActiveLoan, error) {
	logCtx := s.logger.With(slog.String("userID", userID), slog.String("offerID", offerID))
	logCtx.InfoContext(ctx, "Attempting to originate loan")

	limit, err := s.normalizeLimit(limit)
	if err != nil {
		monitoring.RecordOrigination("invalid")
		return nil, err
	}

	o, err := s.offers.Get(ctx, offerID)
	if err != nil {
		logCtx.WarnContext(ctx, "Offer lookup failed", slog.Any("error", err))
		monitoring.RecordOrigination("offer_not_found")
		return nil, err
	}

	l, err := NewActiveLoan(userID, o, s.now())
	if err != nil {
		monitoring.RecordOrigination("invalid")
		return nil, err
	}

	if err := s.repo.CreateCapped(ctx, l, limit); err != nil {
		if errors.Is(err, apperrors.ErrLimitExceeded) {
			logCtx.WarnContext(ctx, "Loan limit reached", slog.Int("limit", limit))
			monitoring.RecordOrigination("limit_exceeded")
			return nil, fmt.Errorf("%w: you have reached your loan limit of %d", apperrors.ErrLimitExceeded, limit)
		}
		logCtx.ErrorContext(ctx, "Repository failed to create loan", slog.Any("error", err))
		monitoring.RecordOrigination("error")
		return nil, err
	}

	if s.attacher != nil {
		if err := s.attacher.AttachCredit(ctx, userID, l.ID); err != nil {
			logCtx.ErrorContext(ctx, "Loan created but attaching credit id to user failed", slog.Any("error", err))
		}
	}

	evt := event.LoanOriginatedEvent{
		LoanID:         l.ID,
		UserID:         userID,
		OfferID:        offerID,
		LoanType:       string(l.LoanType),
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		TermMonths:     l.TermMonths,
		MonthlyPayment: l.MonthlyPayment,
		Timestamp:      s.now(),
	}
	if pubErr := s.pub.PublishLoanOriginated(ctx, evt); pubErr != nil {
		logCtx.ErrorContext(ctx, "Loan originated, but failed to publish event", slog.Any("error", pubErr))
	}

	monitoring.RecordOrigination("success")
	logCtx.InfoContext(ctx, "Successfully originated loan", slog.String("loanID", l.ID))
	return l, nil
}

func (s *loanService) ListLoans(ctx context.Context, userID string) ([]ActiveLoan, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *loanService) GetPortfolio(ctx context.Context, userID string, limit int) (PortfolioSummary, error) {
	limit, err := s.normalizeLimit(limit)
	if err != nil {
		return PortfolioSummary{}, err
	}

	loans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loans for portfolio", slog.String("userID", userID), slog.Any("error", err))
		return PortfolioSummary{}, err
	}
	return Summarize(loans, limit, s.now())
}

// ownedLoan loads a loan and rejects callers that do not own it.
func (s *loanService) ownedLoan(ctx context.Context, userID, loanID string) (ActiveLoan, error) {
	l, err := s.repo.Get(ctx, loanID)
	if err != nil {
		return ActiveLoan{}, err
	}
	if l.UserID != userID {
		s.logger.WarnContext(ctx, "Loan ownership mismatch", slog.String("userID", userID), slog.String("loanID", loanID))
		return ActiveLoan{}, fmt.Errorf("%w: loan %s", apperrors.ErrForbidden, loanID)
	}
	return l, nil
}

func (s *loanService) EditLoan(ctx context.Context, userID, loanID string, newAmount float64, newTerm int, limit int) (ActiveLoan, error) {
	logCtx := s.logger.With(slog.String("userID", userID), slog.String("loanID", loanID))

	limit, err := s.normalizeLimit(limit)
	if err != nil {
		monitoring.RecordLoanEdit("invalid")
		return ActiveLoan{}, err
	}

	l, err := s.ownedLoan(ctx, userID, loanID)
	if err != nil {
		monitoring.RecordLoanEdit("not_found")
		return ActiveLoan{}, err
	}

	// Edits count against the same cap as new originations.
	loans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		monitoring.RecordLoanEdit("error")
		return ActiveLoan{}, err
	}
	if len(loans) >= limit {
		monitoring.RecordLoanEdit("limit_exceeded")
		return ActiveLoan{}, fmt.Errorf("%w: you have reached your loan limit of %d", apperrors.ErrLimitExceeded, limit)
	}

	if err := EditLoan(&l, newAmount, newTerm); err != nil {
		monitoring.RecordLoanEdit("invalid")
		return ActiveLoan{}, err
	}

	if err := s.repo.UpdateTerms(ctx, &l); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to update loan terms", slog.Any("error", err))
		monitoring.RecordLoanEdit("error")
		return ActiveLoan{}, err
	}

	evt := event.LoanEditedEvent{
		LoanID:       l.ID,
		UserID:       userID,
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		TermMonths:   l.TermMonths,
		Timestamp:    s.now(),
	}
	if pubErr := s.pub.PublishLoanEdited(ctx, evt); pubErr != nil {
		logCtx.ErrorContext(ctx, "Loan edited, but failed to publish event", slog.Any("error", pubErr))
	}

	monitoring.RecordLoanEdit("success")
	logCtx.InfoContext(ctx, "Successfully edited loan")
	return l, nil
}

func (s *loanService) RepayLoan(ctx context.Context, userID, loanID string) error {
	logCtx := s.logger.With(slog.String("userID", userID), slog.String("loanID", loanID))

	l, err := s.ownedLoan(ctx, userID, loanID)
	if err != nil {
		monitoring.RecordRepayment("not_found")
		return err
	}

	if err := s.repo.Delete(ctx, l.ID); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to delete loan", slog.Any("error", err))
		monitoring.RecordRepayment("error")
		return err
	}

	evt := event.LoanRepaidEvent{LoanID: l.ID, UserID: userID, Timestamp: s.now()}
	if pubErr := s.pub.PublishLoanRepaid(ctx, evt); pubErr != nil {
		logCtx.ErrorContext(ctx, "Loan repaid, but failed to publish event", slog.Any("error", pubErr))
	}

	monitoring.RecordRepayment("success")
	logCtx.InfoContext(ctx, "Successfully repaid loan")
	return nil
}

func (s *loanService) RecordMonthlyPayment(ctx context.Context, userID, loanID string) (ActiveLoan, error) {
	logCtx := s.logger.With(slog.String("userID", userID), slog.String("loanID", loanID))

	l, err := s.ownedLoan(ctx, userID, loanID)
	if err != nil {
		monitoring.RecordRepayment("not_found")
		return ActiveLoan{}, err
	}

	if err := l.RecordPayment(); err != nil {
		monitoring.RecordRepayment("closed")
		return ActiveLoan{}, err
	}

	if err := s.repo.UpdateProgress(ctx, &l); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to record payment", slog.Any("error", err))
		monitoring.RecordRepayment("error")
		return ActiveLoan{}, err
	}

	monitoring.RecordRepayment("success")
	logCtx.InfoContext(ctx, "Recorded monthly payment", slog.Int("paidMonths", l.PaidMonths), slog.String("status", string(l.Status)))
	return l, nil
}

func (s *loanService) ChangeLoanLimit(ctx context.Context, userID string, newLimit int) (int, error) {
	if newLimit < s.cfg.MinLoanLimit || newLimit > s.cfg.MaxLoanLimit {
		return 0, apperrors.NewValidationError("limit",
			fmt.Sprintf("loan limit must be between %d and %d", s.cfg.MinLoanLimit, s.cfg.MaxLoanLimit))
	}

	loans, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if newLimit < len(loans) {
		return 0, apperrors.NewValidationError("limit",
			fmt.Sprintf("loan limit cannot be lower than your %d active loans", len(loans)))
	}

	s.logger.InfoContext(ctx, "Loan limit changed", slog.String("userID", userID), slog.Int("limit", newLimit))
	return newLimit, nil
}
