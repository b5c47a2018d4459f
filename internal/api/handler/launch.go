package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/launcher"
)

// LaunchHandler forwards commands to the companion app.
type LaunchHandler struct {
	launcher   launcher.Launcher
	controller *launcher.Controller
}

// NewLaunchHandler creates a new LaunchHandler.
func NewLaunchHandler(l launcher.Launcher) *LaunchHandler {
	return &LaunchHandler{launcher: l, controller: launcher.NewController(l)}
}

// Launch sends the command named in the path.
func (h *LaunchHandler) Launch(w http.ResponseWriter, r *http.Request) {
	command := domain.LaunchCommand(chi.URLParam(r, "command"))
	if !command.Valid() {
		handleError(w, fmt.Errorf("%w: %q", domain.ErrUnsupportedCmd, command))
		return
	}

	var err error
	switch command {
	case domain.CommandStartVPN:
		err = h.controller.Start(r.Context())
	case domain.CommandStopVPN:
		err = h.controller.Stop(r.Context())
	default:
		err = h.launcher.Launch(r.Context(), command)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
