package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/api/handler"
	"github.com/bcnelson/netguard/internal/api/middleware"
	"github.com/bcnelson/netguard/internal/launcher"
	"github.com/bcnelson/netguard/internal/onboarding"
	"github.com/bcnelson/netguard/internal/redemption"
	"github.com/bcnelson/netguard/internal/rules"
	"github.com/bcnelson/netguard/internal/service"
	"github.com/bcnelson/netguard/internal/tokenstore"
	"github.com/bcnelson/netguard/internal/tunnel"
)

// Dependencies are the components served by the control API.
type Dependencies struct {
	Rules        *rules.Store
	Domains      *rules.DomainStore
	ApplyService *service.ApplyService
	Redeemer     *redemption.Redeemer
	Tokens       tokenstore.TokenStore
	Onboarding   *onboarding.Machine
	Tunnel       *tunnel.Controller
	Launcher     launcher.Launcher
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(deps Dependencies, apiKey string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)

	// Health check (no auth required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API routes (auth required, JSON Content-Type)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentType)
		r.Use(middleware.Auth(apiKey))

		// App routing rules
		rulesHandler := handler.NewRulesHandler(deps.Rules, deps.ApplyService)
		r.Get("/rules", rulesHandler.List)
		r.Put("/rules", rulesHandler.Replace)
		r.Get("/rules/expanded", rulesHandler.Expanded)
		r.Post("/rules/apply", rulesHandler.Apply)
		r.Put("/rules/{bundle_id}", rulesHandler.SetRule)
		r.Delete("/rules/{bundle_id}", rulesHandler.DeleteRule)

		// Excluded domains
		domainsHandler := handler.NewDomainsHandler(deps.Domains)
		r.Get("/domains", domainsHandler.List)
		r.Put("/domains", domainsHandler.Replace)

		// Invite codes
		redeemHandler := handler.NewRedeemHandler(deps.Redeemer)
		r.Post("/redeem", redeemHandler.Redeem)
		tokenHandler := handler.NewTokenHandler(deps.Tokens)
		r.Delete("/token", tokenHandler.Delete)

		// Onboarding
		onboardingHandler := handler.NewOnboardingHandler(deps.Onboarding)
		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/", onboardingHandler.Get)
			r.Post("/system-extension-approved", onboardingHandler.SystemExtensionApproved)
			r.Post("/vpn-configuration-approved", onboardingHandler.VPNConfigurationApproved)
			r.Post("/reset", onboardingHandler.Reset)
		})

		// Tunnel
		tunnelHandler := handler.NewTunnelHandler(deps.Tunnel, deps.Onboarding)
		r.Get("/tunnel/status", tunnelHandler.Status)
		r.Post("/tunnel/start", tunnelHandler.Start)
		r.Post("/tunnel/stop", tunnelHandler.Stop)

		// Companion app launcher
		if deps.Launcher != nil {
			launchHandler := handler.NewLaunchHandler(deps.Launcher)
			r.Post("/launch/{command}", launchHandler.Launch)
		}
	})

	return r
}
