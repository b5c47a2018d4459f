package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAppNotFound    = errors.New("application bundle not found")
	ErrTokenCorrupt   = errors.New("stored auth token could not be opened")
	ErrApplyNoSink    = errors.New("no proxy settings sink configured")
	ErrUnsupportedCmd = errors.New("unsupported launch command")

	ErrNoConfiguration         = errors.New("no tunnel configuration installed")
	ErrConnectionStatusInvalid = errors.New("tunnel connection status invalid")
	ErrOnboardingIncomplete    = errors.New("onboarding not completed")
)

// Error codes for standardized API error responses.
const (
	ErrCodeResourceNotFound   = "RESOURCE_NOT_FOUND"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeValidationError    = "VALIDATION_ERROR"
	ErrCodeInvalidInviteCode  = "INVALID_INVITE_CODE"
	ErrCodeRedeemNetwork      = "REDEEM_NETWORK_ERROR"
	ErrCodeRedeemMalformed    = "REDEEM_MALFORMED_RESPONSE"
	ErrCodeTunnelUnavailable  = "TUNNEL_UNAVAILABLE"
	ErrCodeOnboardingRequired = "ONBOARDING_REQUIRED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}
