package handler

import (
	"net/http"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/redemption"
	"github.com/bcnelson/netguard/internal/tokenstore"
	"github.com/bcnelson/netguard/internal/validation"
)

// RedeemHandler handles invite code redemption.
type RedeemHandler struct {
	redeemer *redemption.Redeemer
}

// NewRedeemHandler creates a new RedeemHandler.
func NewRedeemHandler(redeemer *redemption.Redeemer) *RedeemHandler {
	return &RedeemHandler{redeemer: redeemer}
}

// Redeem exchanges an invite code for an auth token. The token itself is
// never returned to the caller.
func (h *RedeemHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var req domain.RedeemCodeRequest
	if err := decode(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	if err := validation.ValidateInviteCode(req.Code); err != nil {
		respondValidationError(w, "code", "", err.Error())
		return
	}

	if err := h.redeemer.Redeem(r.Context(), req.Code); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TokenHandler manages the stored auth token.
type TokenHandler struct {
	tokens tokenstore.TokenStore
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(tokens tokenstore.TokenStore) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Delete signs out by removing the stored token. Later tunnel starts carry
// an empty token until a code is redeemed again.
func (h *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.DeleteToken(r.Context()); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
