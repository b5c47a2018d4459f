package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/validation"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondStandardError writes a standardized JSON error response.
func respondStandardError(w http.ResponseWriter, status int, code, message, field string, details map[string]any) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{
			Code:    code,
			Message: message,
			Field:   field,
			Details: details,
		},
	})
}

// respondError writes a JSON error response without field or details.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondStandardError(w, status, code, message, "", nil)
}

// handleError converts domain errors to HTTP errors.
func handleError(w http.ResponseWriter, err error) {
	var redeemErr *domain.RedeemError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid input")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrUnsupportedCmd):
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrOnboardingIncomplete):
		respondError(w, http.StatusConflict, domain.ErrCodeOnboardingRequired, err.Error())
	case errors.Is(err, domain.ErrNoConfiguration), errors.Is(err, domain.ErrConnectionStatusInvalid):
		respondError(w, http.StatusServiceUnavailable, domain.ErrCodeTunnelUnavailable, err.Error())
	case errors.Is(err, domain.ErrApplyNoSink):
		respondError(w, http.StatusServiceUnavailable, domain.ErrCodeInternalError, err.Error())
	case errors.As(err, &redeemErr):
		respondRedeemError(w, redeemErr)
	default:
		respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, "internal server error")
	}
}

func respondRedeemError(w http.ResponseWriter, err *domain.RedeemError) {
	details := map[string]any{"kind": err.Kind.String()}
	if err.StatusCode != 0 {
		details["upstreamStatus"] = err.StatusCode
	}

	switch err.Kind {
	case domain.RedeemFailureInvalidCode:
		respondStandardError(w, http.StatusBadRequest, domain.ErrCodeInvalidInviteCode,
			"invite code rejected", "code", details)
	case domain.RedeemFailureMalformedResponse:
		respondStandardError(w, http.StatusBadGateway, domain.ErrCodeRedeemMalformed,
			"backend returned an unusable response", "", details)
	default:
		respondStandardError(w, http.StatusBadGateway, domain.ErrCodeRedeemNetwork,
			"backend could not be reached", "", details)
	}
}

// respondValidationError writes a JSON validation error response for one field.
func respondValidationError(w http.ResponseWriter, field, value, message string) {
	respondStandardError(w, http.StatusBadRequest, domain.ErrCodeValidationError, message, field,
		map[string]any{"value": value})
}

// respondValidationErrors writes a JSON response for multiple validation errors.
func respondValidationErrors(w http.ResponseWriter, errs validation.ValidationErrors) {
	respondStandardError(w, http.StatusBadRequest, domain.ErrCodeValidationError, errs.Error(), "",
		map[string]any{"errors": errs})
}
