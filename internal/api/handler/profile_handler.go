package handler

import (
	"log/slog"
	"net/http"

	"credit-portal/internal/api/handler/dto"
	"credit-portal/internal/domain/loan"
	"credit-portal/internal/domain/user"
)

// ProfileHandler composes the user record with the user's loans.
type ProfileHandler struct {
	users  user.Service
	loans  loan.Service
	logger *slog.Logger
}

func NewProfileHandler(users user.Service, loans loan.Service, l *slog.Logger) *ProfileHandler {
	if users == nil {
		panic("user service cannot be nil")
	}
	if loans == nil {
		panic("loan service cannot be nil")
	}
	return &ProfileHandler{
		users:  users,
		loans:  loans,
		logger: l.With("component", "ProfileHandler"),
	}
}

// GetProfile handles GET /profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to load user", slog.Any("error", err))
		respondError(w, err)
		return
	}

	loans, err := h.loans.ListLoans(r.Context(), userID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to load user loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProfileResponse(u, loans))
}
