package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"credit-portal/internal/pkg/apperrors"
)

// PortfolioSummary is the aggregate view of a user's active loans. It
// is derived on every read and never persisted.
type PortfolioSummary struct {
	TotalLoans      int         `json:"totalLoans"`
	TotalDebt       float64     `json:"totalDebt"`
	AvgInterestRate float64     `json:"avgInterestRate"`
	NextPayment     NextPayment `json:"nextPayment"`
	CreditScore     int         `json:"creditScore"`
}

// Summarize aggregates the given loans into a portfolio summary as of
// now. Total debt is the sum of outstanding principals. The average
// rate is rounded to two decimal places and is 0 for an empty
// portfolio.
func Summarize(loans []ActiveLoan, limit int, now time.Time) (PortfolioSummary, error) {
	next, err := ProjectNextPayment(loans, now)
	if err != nil {
		return PortfolioSummary{}, err
	}
	s := PortfolioSummary{
		TotalLoans:  len(loans),
		NextPayment: next,
		CreditScore: EstimateCreditScore(loans, limit),
	}
	if len(loans) == 0 {
		return s, nil
	}

	var totalRate float64
	for _, l := range loans {
		s.TotalDebt += l.Amount
		totalRate += l.InterestRate
	}
	mean := totalRate / float64(len(loans))
	s.AvgInterestRate = decimal.NewFromFloat(mean).Round(2).InexactFloat64()
	return s, nil
}

// EditLoan applies new terms to a loan in place. Increasing the
// principal raises the interest rate by one point per 2000 borrowed on
// top of the original amount; lowering it never reduces the rate. The
// stored monthly payment is left untouched, callers display a
// recomputed figure.
func EditLoan(l *ActiveLoan, newAmount float64, newTerm int) error {
	if newAmount <= 0 {
		return apperrors.NewValidationError("amount", "amount must be positive")
	}
	if newTerm <= 0 {
		return apperrors.NewValidationError("term", "term must be positive")
	}

	if newAmount > l.Amount {
		l.InterestRate += (newAmount - l.Amount) / 2000
	}
	l.Amount = newAmount
	l.TermMonths = newTerm
	return nil
}
