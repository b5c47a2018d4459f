package domain

import (
	"errors"
	"fmt"
)

// RedeemFailure classifies why an invite code could not be redeemed.
type RedeemFailure int

const (
	// RedeemFailureNetwork covers transport errors and server-side failures.
	RedeemFailureNetwork RedeemFailure = iota + 1
	// RedeemFailureInvalidCode means the backend rejected the code.
	RedeemFailureInvalidCode
	// RedeemFailureMalformedResponse means the backend answered with
	// something that is not a usable token payload.
	RedeemFailureMalformedResponse
)

func (k RedeemFailure) String() string {
	switch k {
	case RedeemFailureNetwork:
		return "network"
	case RedeemFailureInvalidCode:
		return "invalid_code"
	case RedeemFailureMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a *RedeemError of the same kind.
var (
	ErrRedeemNetwork           = errors.New("invite code redemption failed: network")
	ErrInvalidInviteCode       = errors.New("invite code rejected")
	ErrMalformedRedeemResponse = errors.New("invite code redemption failed: malformed response")
)

// RedeemError is the terminal failure of one redemption attempt.
type RedeemError struct {
	Kind       RedeemFailure
	StatusCode int
	Err        error
}

func (e *RedeemError) Error() string {
	msg := "redeem invite code: " + e.Kind.String()
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RedeemError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *RedeemError) Is(target error) bool {
	switch target {
	case ErrRedeemNetwork:
		return e.Kind == RedeemFailureNetwork
	case ErrInvalidInviteCode:
		return e.Kind == RedeemFailureInvalidCode
	case ErrMalformedRedeemResponse:
		return e.Kind == RedeemFailureMalformedResponse
	}
	return false
}

// NewRedeemError builds a RedeemError of the given kind.
func NewRedeemError(kind RedeemFailure, status int, err error) *RedeemError {
	return &RedeemError{Kind: kind, StatusCode: status, Err: err}
}

// RedeemRequest is the body sent to the redemption endpoint.
type RedeemRequest struct {
	Code string `json:"code"`
}

// RedeemResponse is the success payload of the redemption endpoint.
type RedeemResponse struct {
	Token string `json:"token"`
}

// RedeemErrorResponse is the structured failure payload of the endpoint.
type RedeemErrorResponse struct {
	Message string `json:"message"`
}
