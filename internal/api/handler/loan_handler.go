package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"credit-portal/internal/api/handler/dto"
	"credit-portal/internal/api/middleware"
	"credit-portal/internal/domain/loan"
	"credit-portal/internal/pkg/apperrors"
)

type LoanHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewLoanHandler(s loan.Service, l *slog.Logger) *LoanHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &LoanHandler{
		service: s,
		logger:  l.With("component", "LoanHandler"),
	}
}

func requireUserID(r *http.Request) (string, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("%w: no authenticated user", apperrors.ErrUnauthorized)
	}
	return userID, nil
}

func loanIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "loanID")
	if id == "" {
		return "", fmt.Errorf("%w: loanID not found in URL path", apperrors.ErrInvalidArgument)
	}
	return id, nil
}

// TakeLoan handles POST /loans
func (h *LoanHandler) TakeLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.TakeLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode take loan request", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	l, err := h.service.TakeLoan(r.Context(), userID, req.OfferID, req.Limit)
	if err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan originated", slog.String("loanID", l.ID))
	respondJSON(w, http.StatusCreated, dto.NewLoanResponse(*l))
}

// ListLoans handles GET /loans
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	loans, err := h.service.ListLoans(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanListResponse(loans))
}

// EditLoan handles PUT /loans/{loanID}
func (h *LoanHandler) EditLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	loanID, err := loanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.EditLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode edit loan request", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	l, err := h.service.EditLoan(r.Context(), userID, loanID, req.Amount, req.Term, req.Limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}

// RepayLoan handles DELETE /loans/{loanID}
func (h *LoanHandler) RepayLoan(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	loanID, err := loanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.RepayLoan(r.Context(), userID, loanID); err != nil {
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Loan repaid", slog.String("loanID", loanID))
	respondJSON(w, http.StatusNoContent, nil)
}

// RecordPayment handles POST /loans/{loanID}/payments
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	loanID, err := loanIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	l, err := h.service.RecordMonthlyPayment(r.Context(), userID, loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l))
}

// limitFromQuery reads an optional session loan limit; 0 means "use the
// configured default".
func limitFromQuery(values url.Values) (int, error) {
	raw := values.Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be an integer", apperrors.ErrInvalidArgument)
	}
	return limit, nil
}
