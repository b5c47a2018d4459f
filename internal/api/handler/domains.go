package handler

import (
	"net/http"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/rules"
)

// DomainsHandler handles excluded domain endpoints.
type DomainsHandler struct {
	store *rules.DomainStore
}

// NewDomainsHandler creates a new DomainsHandler.
func NewDomainsHandler(store *rules.DomainStore) *DomainsHandler {
	return &DomainsHandler{store: store}
}

// List returns the excluded domains.
func (h *DomainsHandler) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.DomainsResponse{Domains: domains})
}

// Replace replaces the excluded domains. Entries are normalized before
// they are stored.
func (h *DomainsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req domain.DomainsRequest
	if err := decode(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	if err := h.store.Set(r.Context(), req.Domains); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.DomainsResponse{Domains: rules.NormalizeDomains(req.Domains)})
}
