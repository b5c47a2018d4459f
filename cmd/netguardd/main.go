package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bcnelson/netguard/internal/api"
	"github.com/bcnelson/netguard/internal/config"
	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/expander"
	"github.com/bcnelson/netguard/internal/launcher"
	"github.com/bcnelson/netguard/internal/logging"
	"github.com/bcnelson/netguard/internal/onboarding"
	"github.com/bcnelson/netguard/internal/proxy"
	"github.com/bcnelson/netguard/internal/redemption"
	"github.com/bcnelson/netguard/internal/rules"
	"github.com/bcnelson/netguard/internal/service"
	"github.com/bcnelson/netguard/internal/storage"
	"github.com/bcnelson/netguard/internal/storage/memory"
	"github.com/bcnelson/netguard/internal/storage/sql"
	"github.com/bcnelson/netguard/internal/tokenstore"
	"github.com/bcnelson/netguard/internal/tunnel"
	"github.com/bcnelson/netguard/internal/tunnel/scutil"
)

var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.NewLogger(cfg.Log, version)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("netguardd failed")
	}
	logger.Info().Msg("netguardd stopped")
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	store, err := openStorage(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := cfg.Security.KeyBytes()
	if err != nil {
		return err
	}
	tokens := tokenstore.New(store, key)

	// Routing rules and their expansion
	ruleStore := rules.NewStore(store, logging.Component(logger, "rules"))
	domainStore := rules.NewDomainStore(store, logging.Component(logger, "domains"))

	rootFS := os.DirFS("/")
	exp := expander.New(rootFS, expander.NewDirectoryLocator(rootFS, cfg.Apps.Roots()), logging.Component(logger, "expander"))

	applyService := service.NewApplyService(
		ruleStore,
		domainStore,
		exp,
		proxy.NewFileSink(cfg.Apply.SnapshotPath, logger),
		cfg.Apply.Debounce,
		cfg.Apply.AutoApply,
		logger,
	)
	defer applyService.Stop()
	unsubRules := ruleStore.Subscribe(func(domain.RuleSet) { applyService.TriggerApply() })
	defer unsubRules()
	unsubDomains := domainStore.Subscribe(func([]string) { applyService.TriggerApply() })
	defer unsubDomains()
	applyService.TriggerApply()

	// Invite code redemption
	client := redemption.NewClient(redemption.ClientOptions{
		BaseURL:    cfg.Backend.BaseURL,
		Timeout:    cfg.Backend.Timeout,
		UserAgent:  cfg.Backend.UserAgent,
		AppVersion: cfg.Backend.AppVersion,
	})
	redeemer := redemption.NewRedeemer(client, tokens, redemption.NewVersionStore(store), cfg.Backend.AppVersion,
		logging.Component(logger, "redemption"))

	// Tunnel session
	machine := onboarding.New(store, logging.Component(logger, "onboarding"))
	manager := scutil.NewManager(scutil.Options{
		Path:        cfg.Tunnel.ScutilPath,
		ProviderID:  cfg.Tunnel.ExtensionBundleID,
		ServiceName: cfg.Tunnel.ServiceName,
	}, logger)
	locator := tunnel.NewLocator(manager, logger)
	defer locator.Wait()
	controller := tunnel.NewController(locator, machine, tokens, logger)
	monitor := tunnel.NewMonitor(locator, cfg.Tunnel.PollInterval, func(s tunnel.Session) {
		logger.Info().Stringer("status", s.Status()).Msg("tunnel status changed")
	}, logger)

	openLauncher := launcher.NewOpenLauncher(cfg.Launcher.OpenPath, cfg.Launcher.AppPath, nil, logger)

	// Create router
	router := api.NewRouter(api.Dependencies{
		Rules:        ruleStore,
		Domains:      domainStore,
		ApplyService: applyService,
		Redeemer:     redeemer,
		Tokens:       tokens,
		Onboarding:   machine,
		Tunnel:       controller,
		Launcher:     openLauncher,
	}, cfg.Server.APIKey, logging.Component(logger, "http"))

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.Server.Addr()).Msg("control API listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return monitor.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStorage(cfg config.DatabaseConfig) (storage.Storage, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), nil
	case "sqlite3":
		// Create data directory if needed
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	return sql.New(cfg.Driver, cfg.DSN)
}
