package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-portal/internal/pkg/apperrors"
)

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		rate   float64
		term   int
		want   int64
	}{
		{name: "standard bank offer", amount: 100000, rate: 10, term: 12, want: 9167},
		{name: "zero rate is principal only", amount: 120000, rate: 0, term: 12, want: 10000},
		{name: "single month", amount: 1000, rate: 12, term: 1, want: 1010},
		{name: "two year term", amount: 100000, rate: 10, term: 24, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MonthlyPayment(tt.amount, tt.rate, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyPaymentInvalidTerm(t *testing.T) {
	for _, term := range []int{0, -3} {
		_, err := MonthlyPayment(100000, 10, term)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)
	}
}

func TestTotalPayment(t *testing.T) {
	assert.Equal(t, int64(110004), TotalPayment(9167, 12))
}

func TestNextDueDate(t *testing.T) {
	taken := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC), NextDueDate(taken, 0))
	assert.Equal(t, time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), NextDueDate(taken, 4))

	// Jan 31 + 1 month normalizes past the end of February.
	endOfMonth := time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), NextDueDate(endOfMonth, 0))
}

func TestProjectNextPaymentEmpty(t *testing.T) {
	got, err := ProjectNextPayment(nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, NextPaymentNone, got.Status)
	assert.Zero(t, got.Amount)
	assert.True(t, got.Date.IsZero())
}

func TestProjectNextPaymentPicksEarliest(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	loans := []ActiveLoan{
		{Amount: 100000, InterestRate: 10, TermMonths: 12,
			TakenDate: time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC)},
		{Amount: 50000, InterestRate: 15, TermMonths: 6,
			TakenDate: time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)},
	}

	got, err := ProjectNextPayment(loans, now)
	require.NoError(t, err)
	assert.Equal(t, NextPaymentDue, got.Status)
	assert.Equal(t, time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), got.Date)

	want, err := MonthlyPayment(50000, 15, 6)
	require.NoError(t, err)
	assert.Equal(t, want, got.Amount)
}

func TestProjectNextPaymentTieKeepsFirst(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	taken := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	loans := []ActiveLoan{
		{Amount: 60000, InterestRate: 12, TermMonths: 12, TakenDate: taken},
		{Amount: 90000, InterestRate: 12, TermMonths: 12, TakenDate: taken},
	}

	got, err := ProjectNextPayment(loans, now)
	require.NoError(t, err)

	first, err := MonthlyPayment(60000, 12, 12)
	require.NoError(t, err)
	assert.Equal(t, first, got.Amount)
}

func TestProjectNextPaymentOverdue(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	loans := []ActiveLoan{
		{Amount: 100000, InterestRate: 10, TermMonths: 12,
			TakenDate: time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC), PaidMonths: 1},
	}

	got, err := ProjectNextPayment(loans, now)
	require.NoError(t, err)
	assert.Equal(t, NextPaymentOverdue, got.Status)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), got.Date)
	assert.NotZero(t, got.Amount)
}

func TestRecordPayment(t *testing.T) {
	l := ActiveLoan{ID: "loan-1", TermMonths: 2, Status: StatusActive}

	require.NoError(t, l.RecordPayment())
	assert.Equal(t, 1, l.PaidMonths)
	assert.Equal(t, StatusActive, l.Status)

	require.NoError(t, l.RecordPayment())
	assert.Equal(t, 2, l.PaidMonths)
	assert.Equal(t, StatusClosed, l.Status)

	assert.ErrorIs(t, l.RecordPayment(), apperrors.ErrLoanClosed)
	assert.Equal(t, 2, l.PaidMonths)
}
