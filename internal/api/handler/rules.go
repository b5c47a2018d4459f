package handler

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/rules"
	"github.com/bcnelson/netguard/internal/service"
	"github.com/bcnelson/netguard/internal/validation"
)

const rulesResource = "rules"

// RulesHandler handles app routing rule endpoints.
type RulesHandler struct {
	store        *rules.Store
	applyService *service.ApplyService

	// mu serializes read-modify-write updates of the rule set.
	mu sync.Mutex
}

// NewRulesHandler creates a new RulesHandler.
func NewRulesHandler(store *rules.Store, applyService *service.ApplyService) *RulesHandler {
	return &RulesHandler{store: store, applyService: applyService}
}

// List returns the persisted rules sorted by bundle identifier.
func (h *RulesHandler) List(w http.ResponseWriter, r *http.Request) {
	set, err := h.store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	resp := rulesResponse(set)
	SetETagHeader(w, GenerateETag(rulesResource, resp))
	respondJSON(w, http.StatusOK, resp)
}

// Replace replaces the whole rule set.
func (h *RulesHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var req domain.ReplaceRulesRequest
	if err := decode(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}

	ids := make([]string, len(req.Rules))
	for i, rule := range req.Rules {
		ids[i] = rule.BundleID
	}
	if errs := validation.ValidateRuleSet(ids); errs.HasErrors() {
		respondValidationErrors(w, errs)
		return
	}

	set := make(domain.RuleSet, len(req.Rules))
	for _, rule := range req.Rules {
		parsed, err := domain.ParseRoutingRule(rule.Rule)
		if err != nil {
			respondValidationError(w, "rule", rule.Rule, err.Error())
			return
		}
		set[domain.AppIdentifier(rule.BundleID)] = parsed
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	stored, err := h.store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	current := GenerateETag(rulesResource, rulesResponse(stored))
	if !CheckIfMatch(r, current) {
		RespondPreconditionFailed(w, current)
		return
	}

	if err := h.store.Set(r.Context(), set); err != nil {
		handleError(w, err)
		return
	}

	resp := rulesResponse(set)
	SetETagHeader(w, GenerateETag(rulesResource, resp))
	respondJSON(w, http.StatusOK, resp)
}

// SetRule sets the rule for a single app.
func (h *RulesHandler) SetRule(w http.ResponseWriter, r *http.Request) {
	bundleID := chi.URLParam(r, "bundle_id")
	if err := validation.ValidateBundleID(bundleID); err != nil {
		respondValidationError(w, "bundle_id", bundleID, err.Error())
		return
	}

	var req domain.SetRuleRequest
	if err := decode(r, &req); err != nil {
		respondDecodeError(w, err)
		return
	}
	rule, err := domain.ParseRoutingRule(req.Rule)
	if err != nil {
		respondValidationError(w, "rule", req.Rule, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, err := h.store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	set = set.Clone()
	set[domain.AppIdentifier(bundleID)] = rule
	if err := h.store.Set(r.Context(), set); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.AppRule{BundleID: domain.AppIdentifier(bundleID), Rule: rule})
}

// DeleteRule removes the rule for a single app, returning it to default
// tunnel behavior.
func (h *RulesHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := domain.AppIdentifier(chi.URLParam(r, "bundle_id"))

	h.mu.Lock()
	defer h.mu.Unlock()

	set, err := h.store.Load(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	set = set.Clone()
	if _, ok := set[id]; !ok {
		handleError(w, domain.ErrNotFound)
		return
	}
	delete(set, id)
	if err := h.store.Set(r.Context(), set); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Expanded returns the expanded rules without pushing them.
func (h *RulesHandler) Expanded(w http.ResponseWriter, r *http.Request) {
	resp, err := h.applyService.Preview(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Apply forces an immediate push of the expanded rules to the proxy.
func (h *RulesHandler) Apply(w http.ResponseWriter, r *http.Request) {
	resp, err := h.applyService.ForceApply(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func rulesResponse(set domain.RuleSet) *domain.RulesResponse {
	return &domain.RulesResponse{Rules: domain.ExpandedEntries(set, domain.ExpandedRuleSet(set))}
}
