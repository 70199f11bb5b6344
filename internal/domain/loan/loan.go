package loan

import (
	"fmt"
	"time"

	"credit-portal/internal/domain/offer"
	"credit-portal/internal/pkg/apperrors"
)

type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// ActiveLoan is an originated, currently-open loan owned by one user. The
// bank/lender names and the offer back-reference are denormalized at
// origination time so the portfolio renders without touching the catalogs.
// Invariant: 0 <= PaidMonths <= TermMonths.
type ActiveLoan struct {
	ID             string     `json:"-"`
	UserID         string     `json:"userId"`
	OfferID        string     `json:"loanId"`
	LoanType       offer.Kind `json:"loanType"`
	BankName       string     `json:"bankName"`
	LenderName     string     `json:"lenderName"`
	Amount         float64    `json:"amount"`
	InterestRate   float64    `json:"interestRate"`
	TermMonths     int        `json:"term"`
	MonthlyPayment int64      `json:"monthlyPayment"`
	TakenDate      time.Time  `json:"takenDate"`
	PaidMonths     int        `json:"paidMonths"`
	Status         Status     `json:"status"`
}

// NewActiveLoan originates a loan from a catalog offer. Bank offers
// denormalize the bank name (falling back to the credit name), private
// offers the lender name; the other field stays empty, matching the
// stored document shape.
func NewActiveLoan(userID string, o offer.Offer, now time.Time) (*ActiveLoan, error) {
	monthly, err := MonthlyPayment(o.Amount, o.InterestRate, o.TermMonths)
	if err != nil {
		return nil, err
	}

	l := &ActiveLoan{
		UserID:         userID,
		OfferID:        o.ID,
		LoanType:       o.Kind,
		Amount:         o.Amount,
		InterestRate:   o.InterestRate,
		TermMonths:     o.TermMonths,
		MonthlyPayment: monthly,
		TakenDate:      now,
		PaidMonths:     0,
		Status:         StatusActive,
	}
	if o.Kind == offer.KindPrivate {
		l.LenderName = o.LenderName
	} else {
		l.BankName = o.BankName
		if l.BankName == "" {
			l.BankName = o.CreditName
		}
	}
	return l, nil
}

// DisplayName mirrors the portfolio card title: bank name, lender name,
// or a generic fallback naming the loan id.
func (l *ActiveLoan) DisplayName() string {
	if l.BankName != "" {
		return l.BankName
	}
	if l.LenderName != "" {
		return l.LenderName
	}
	return fmt.Sprintf("Loan #%s", l.ID)
}

// RecordPayment marks one more month as paid. Reaching the full term
// closes the loan; paying past it is rejected.
func (l *ActiveLoan) RecordPayment() error {
	if l.Status == StatusClosed {
		return fmt.Errorf("%w: loan %s", apperrors.ErrLoanClosed, l.ID)
	}
	if l.PaidMonths >= l.TermMonths {
		return fmt.Errorf("%w: loan %s", apperrors.ErrLoanClosed, l.ID)
	}
	l.PaidMonths++
	if l.PaidMonths == l.TermMonths {
		l.Status = StatusClosed
	}
	return nil
}
