package handler

import (
	"net/http"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/onboarding"
	"github.com/bcnelson/netguard/internal/tunnel"
)

// TunnelHandler handles tunnel control endpoints.
type TunnelHandler struct {
	controller *tunnel.Controller
	onboarding *onboarding.Machine
}

// NewTunnelHandler creates a new TunnelHandler.
func NewTunnelHandler(controller *tunnel.Controller, onboarding *onboarding.Machine) *TunnelHandler {
	return &TunnelHandler{controller: controller, onboarding: onboarding}
}

// Status returns the tunnel connection status.
func (h *TunnelHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondStatus(w, r, http.StatusOK)
}

// Start starts the tunnel. The response carries the status observed after
// the request was issued; connecting is expected.
func (h *TunnelHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Start(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	h.respondStatus(w, r, http.StatusAccepted)
}

// Stop stops the tunnel if it is active.
func (h *TunnelHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Stop(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	h.respondStatus(w, r, http.StatusAccepted)
}

func (h *TunnelHandler) respondStatus(w http.ResponseWriter, r *http.Request, code int) {
	status, err := h.controller.Status(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, code, &domain.TunnelStatusResponse{
		Status:     status,
		Onboarding: h.onboarding.Status(r.Context()),
	})
}
