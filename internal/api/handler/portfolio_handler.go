package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"credit-portal/internal/api/handler/dto"
	"credit-portal/internal/domain/loan"
	"credit-portal/internal/pkg/apperrors"
)

type PortfolioHandler struct {
	service loan.Service
	logger  *slog.Logger
}

func NewPortfolioHandler(s loan.Service, l *slog.Logger) *PortfolioHandler {
	if s == nil {
		panic("loan service cannot be nil")
	}
	return &PortfolioHandler{
		service: s,
		logger:  l.With("component", "PortfolioHandler"),
	}
}

// GetPortfolio handles GET /portfolio. The summary is derived fresh on
// every call; an optional limit query parameter supplies the session's
// loan limit for the credit score.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	limit, err := limitFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}

	summary, err := h.service.GetPortfolio(r.Context(), userID, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to build portfolio", slog.Any("error", err))
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ChangeLimit handles POST /portfolio/limit
func (h *PortfolioHandler) ChangeLimit(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.ChangeLimitRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode change limit request", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	accepted, err := h.service.ChangeLoanLimit(r.Context(), userID, req.Limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.ChangeLimitResponse{Limit: accepted})
}
