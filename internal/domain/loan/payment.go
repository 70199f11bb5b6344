package loan

import (
	"fmt"
	"math"
	"time"

	"credit-portal/internal/pkg/apperrors"
)

// MonthlyPayment is the portal's simplified payment model: one month of
// interest on the full amount plus a straight-line share of the
// principal, rounded to whole currency units. It is deliberately NOT an
// amortizing reducing-balance formula; downstream numbers depend on this
// exact arithmetic.
func MonthlyPayment(amount, annualRatePercent float64, termMonths int) (int64, error) {
	if termMonths <= 0 {
		return 0, fmt.Errorf("%w: got %d", apperrors.ErrInvalidTerm, termMonths)
	}
	monthly := amount*annualRatePercent/100/12 + amount/float64(termMonths)
	return int64(math.Round(monthly)), nil
}

func TotalPayment(monthlyPayment int64, termMonths int) int64 {
	return monthlyPayment * int64(termMonths)
}

// NextDueDate projects the due date of the first unpaid month: the taken
// date shifted forward by paidMonths+1 calendar months.
func NextDueDate(takenDate time.Time, paidMonths int) time.Time {
	return takenDate.AddDate(0, paidMonths+1, 0)
}

type NextPaymentStatus string

const (
	// NextPaymentNone is the sentinel for an empty loan set.
	NextPaymentNone NextPaymentStatus = "none"
	// NextPaymentOverdue means the nearest projected date already passed.
	NextPaymentOverdue NextPaymentStatus = "overdue"
	NextPaymentDue     NextPaymentStatus = "due"
)

// NextPayment is the nearest projected payment across a loan set. Date
// and Amount are populated for both the due and the overdue case.
type NextPayment struct {
	Status NextPaymentStatus `json:"status"`
	Amount int64             `json:"amount,omitempty"`
	Date   time.Time         `json:"date,omitzero"`
}

// ProjectNextPayment picks the loan with the earliest projected due date.
// Ties keep the first-encountered loan (strict less-than scan). A nearest
// date strictly before now reports Overdue.
func ProjectNextPayment(loans []ActiveLoan, now time.Time) (NextPayment, error) {
	if len(loans) == 0 {
		return NextPayment{Status: NextPaymentNone}, nil
	}

	var nearest NextPayment
	for i, l := range loans {
		amount, err := MonthlyPayment(l.Amount, l.InterestRate, l.TermMonths)
		if err != nil {
			return NextPayment{}, err
		}
		due := NextDueDate(l.TakenDate, l.PaidMonths)
		if i == 0 || due.Before(nearest.Date) {
			nearest = NextPayment{Status: NextPaymentDue, Amount: amount, Date: due}
		}
	}

	if nearest.Date.Before(now) {
		nearest.Status = NextPaymentOverdue
	}
	return nearest, nil
}
