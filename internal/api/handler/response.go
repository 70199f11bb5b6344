package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"credit-portal/internal/api/handler/dto"
	"credit-portal/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError maps domain errors onto HTTP statuses. Store failures
// never leak their message to the client.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred"

	var vErr *apperrors.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
		message = "You do not have access to this resource"
	case errors.Is(err, apperrors.ErrLimitExceeded):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrLoanClosed):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrInvalidTerm):
		status = http.StatusBadRequest
		message = err.Error()
	}

	detail := dto.ErrorDetail{Message: message}
	if errors.As(err, &vErr) {
		detail.Field = vErr.Field
		detail.Message = vErr.Message
	}

	respondJSON(w, status, dto.ErrorResponse{Error: detail})
}
