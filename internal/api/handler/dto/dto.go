package dto

import (
	"fmt"
	"strings"

	"credit-portal/internal/domain/loan"
	"credit-portal/internal/domain/offer"
	"credit-portal/internal/domain/user"
)

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("fullName cannot be empty")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if r.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

type AuthResponse struct {
	Token string           `json:"token"`
	User  user.SessionUser `json:"user"`
}

type TakeLoanRequest struct {
	OfferID string `json:"offerId"`
	Limit   int    `json:"limit,omitempty"`
}

func (r *TakeLoanRequest) Validate() error {
	if strings.TrimSpace(r.OfferID) == "" {
		return fmt.Errorf("offerId cannot be empty")
	}
	return nil
}

type EditLoanRequest struct {
	Amount float64 `json:"amount"`
	Term   int     `json:"term"`
	Limit  int     `json:"limit,omitempty"`
}

func (r *EditLoanRequest) Validate() error {
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be a positive number")
	}
	if r.Term <= 0 {
		return fmt.Errorf("term must be a positive number")
	}
	return nil
}

type ChangeLimitRequest struct {
	Limit int `json:"limit"`
}

type ChangeLimitResponse struct {
	Limit int `json:"limit"`
}

type OfferResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Name         string  `json:"name"`
	CreditName   string  `json:"creditName,omitempty"`
	BankName     string  `json:"bankName,omitempty"`
	LenderName   string  `json:"lenderName,omitempty"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interestRate"`
	Term         int     `json:"term"`
	Description  string  `json:"description,omitempty"`
	Requirements string  `json:"requirements,omitempty"`
	// MonthlyPayment and TotalPayment are the calculator preview for the
	// offer's full amount and term.
	MonthlyPayment int64 `json:"monthlyPayment"`
	TotalPayment   int64 `json:"totalPayment"`
}

func NewOfferResponse(o offer.Offer) OfferResponse {
	resp := OfferResponse{
		ID:           o.ID,
		Kind:         string(o.Kind),
		Name:         o.DisplayName(),
		CreditName:   o.CreditName,
		BankName:     o.BankName,
		LenderName:   o.LenderName,
		Amount:       o.Amount,
		InterestRate: o.InterestRate,
		Term:         o.TermMonths,
		Description:  o.Description,
		Requirements: o.Requirements,
	}
	if monthly, err := loan.MonthlyPayment(o.Amount, o.InterestRate, o.TermMonths); err == nil {
		resp.MonthlyPayment = monthly
		resp.TotalPayment = loan.TotalPayment(monthly, o.TermMonths)
	}
	return resp
}

func NewOfferListResponse(offers []offer.Offer) []OfferResponse {
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, NewOfferResponse(o))
	}
	return out
}

type LoanResponse struct {
	ID             string  `json:"id"`
	OfferID        string  `json:"loanId"`
	LoanType       string  `json:"loanType"`
	Name           string  `json:"name"`
	BankName       string  `json:"bankName,omitempty"`
	LenderName     string  `json:"lenderName,omitempty"`
	Amount         float64 `json:"amount"`
	InterestRate   float64 `json:"interestRate"`
	Term           int     `json:"term"`
	MonthlyPayment int64   `json:"monthlyPayment"`
	TakenDate      string  `json:"takenDate"`
	PaidMonths     int     `json:"paidMonths"`
	Status         string  `json:"status"`
	NextDueDate    string  `json:"nextDueDate"`
}

func NewLoanResponse(l loan.ActiveLoan) LoanResponse {
	return LoanResponse{
		ID:             l.ID,
		OfferID:        l.OfferID,
		LoanType:       string(l.LoanType),
		Name:           l.DisplayName(),
		BankName:       l.BankName,
		LenderName:     l.LenderName,
		Amount:         l.Amount,
		InterestRate:   l.InterestRate,
		Term:           l.TermMonths,
		MonthlyPayment: l.MonthlyPayment,
		TakenDate:      l.TakenDate.Format("2006-01-02"),
		PaidMonths:     l.PaidMonths,
		Status:         string(l.Status),
		NextDueDate:    loan.NextDueDate(l.TakenDate, l.PaidMonths).Format("2006-01-02"),
	}
}

func NewLoanListResponse(loans []loan.ActiveLoan) []LoanResponse {
	out := make([]LoanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, NewLoanResponse(l))
	}
	return out
}

type ProfileResponse struct {
	User  user.User      `json:"user"`
	Loans []LoanResponse `json:"loans"`
}

// NewProfileResponse strips the password hash before the record leaves
// the service boundary.
func NewProfileResponse(u user.User, loans []loan.ActiveLoan) ProfileResponse {
	u.PasswordHash = ""
	return ProfileResponse{User: u, Loans: NewLoanListResponse(loans)}
}
