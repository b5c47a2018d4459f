// Package launcher sends commands to the companion app through an external
// process launcher.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
)

// Launcher executes a launch command.
type Launcher interface {
	Launch(ctx context.Context, command domain.LaunchCommand) error
}

// Controller translates start and stop into launcher commands. It holds no
// state and performs no validation; launcher errors are returned unchanged.
type Controller struct {
	launcher Launcher
}

// NewController creates a Controller over launcher.
func NewController(launcher Launcher) *Controller {
	return &Controller{launcher: launcher}
}

// Translation table for Controller. An unsupported entry panics at package
// init.
var (
	startCommand = MustCommand("startVPN")
	stopCommand  = MustCommand("stopVPN")
)

// Start asks the companion app to start the VPN.
func (c *Controller) Start(ctx context.Context) error {
	return c.launcher.Launch(ctx, startCommand)
}

// Stop asks the companion app to stop the VPN.
func (c *Controller) Stop(ctx context.Context) error {
	return c.launcher.Launch(ctx, stopCommand)
}

// MustCommand converts s to a LaunchCommand and panics if it is not one.
// It is meant for hard-coded command names.
func MustCommand(s string) domain.LaunchCommand {
	cmd := domain.LaunchCommand(s)
	if !cmd.Valid() {
		panic(fmt.Sprintf("launcher: unsupported command %q", s))
	}
	return cmd
}

// CommandRunner runs an external program.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func execRun(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

var _ Launcher = (*OpenLauncher)(nil)

// OpenLauncher runs `open -g -a <app> --args <command>` so the companion
// app receives the command without coming to the foreground.
type OpenLauncher struct {
	openPath string
	appPath  string
	run      CommandRunner
	logger   zerolog.Logger
}

// NewOpenLauncher creates a launcher for the app bundle at appPath. A nil
// run uses os/exec.
func NewOpenLauncher(openPath, appPath string, run CommandRunner, logger zerolog.Logger) *OpenLauncher {
	if run == nil {
		run = execRun
	}
	if openPath == "" {
		openPath = "open"
	}
	return &OpenLauncher{
		openPath: openPath,
		appPath:  appPath,
		run:      run,
		logger:   logger.With().Str("component", "launcher").Logger(),
	}
}

// Launch sends command to the companion app.
func (l *OpenLauncher) Launch(ctx context.Context, command domain.LaunchCommand) error {
	if !command.Valid() {
		metrics.LaunchCommandsTotal.WithLabelValues("unknown", "rejected").Inc()
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedCmd, command)
	}
	if l.appPath == "" {
		metrics.LaunchCommandsTotal.WithLabelValues(string(command), "error").Inc()
		return fmt.Errorf("launching %s: no companion app configured", command)
	}

	err := l.run(ctx, l.openPath, "-g", "-a", l.appPath, "--args", string(command))
	if err != nil {
		metrics.LaunchCommandsTotal.WithLabelValues(string(command), "error").Inc()
		l.logger.Warn().Err(err).Str("command", string(command)).Msg("launch failed")
		return fmt.Errorf("launching %s: %w", command, err)
	}

	metrics.LaunchCommandsTotal.WithLabelValues(string(command), "ok").Inc()
	l.logger.Debug().Str("command", string(command)).Msg("launch command sent")
	return nil
}
