package handler

import (
	"context"
	"net/http"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/onboarding"
)

// OnboardingHandler handles onboarding state endpoints.
type OnboardingHandler struct {
	machine *onboarding.Machine
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(machine *onboarding.Machine) *OnboardingHandler {
	return &OnboardingHandler{machine: machine}
}

// Get returns the current onboarding status.
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, onboardingResponse(h.machine.Status(r.Context())))
}

// SystemExtensionApproved records that the user approved the system extension.
func (h *OnboardingHandler) SystemExtensionApproved(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.machine.SystemExtensionApproved)
}

// VPNConfigurationApproved records that the user approved the VPN configuration.
func (h *OnboardingHandler) VPNConfigurationApproved(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.machine.VPNConfigurationApproved)
}

// Reset starts onboarding over.
func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.machine.Reset)
}

func (h *OnboardingHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(context.Context) (domain.OnboardingStatus, error)) {
	status, err := fn(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, onboardingResponse(status))
}

func onboardingResponse(status domain.OnboardingStatus) *domain.OnboardingResponse {
	return &domain.OnboardingResponse{Status: status, IsOnboarding: status.IsOnboarding()}
}
