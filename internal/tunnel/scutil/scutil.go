// Package scutil implements the tunnel configuration ports on macOS by
// running scutil's network connection commands.
package scutil

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tunnel"
)

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Service is one line of `scutil --nc list`.
type Service struct {
	Enabled    bool
	Status     domain.ConnectionStatus
	ID         string
	Type       string
	ProviderID string
	Name       string
}

// * (Connected)      6B5A3C1E-0000-4000-8000-000000000001 VPN (com.example.vpn.extension) "NetGuard" [VPN/com.example.vpn.extension]
var serviceLine = regexp.MustCompile(`^\s*(\*)?\s*\(([^)]*)\)\s+([0-9A-Fa-f-]{36})\s+(\S+)(?:\s+\(([^)]*)\))?\s+"([^"]*)"`)

// ParseList parses `scutil --nc list` output. Lines that are not service
// entries are skipped.
func ParseList(out []byte) []Service {
	var services []Service
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := serviceLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		services = append(services, Service{
			Enabled:    m[1] == "*",
			Status:     domain.ParseConnectionStatus(m[2]),
			ID:         m[3],
			Type:       m[4],
			ProviderID: m[5],
			Name:       m[6],
		})
	}
	return services
}

// ParseStatus parses `scutil --nc status` output; the first line is the
// status word.
func ParseStatus(out []byte) domain.ConnectionStatus {
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return domain.ParseConnectionStatus(line)
}

var _ tunnel.ConfigurationManager = (*Manager)(nil)

// Manager lists VPN services through scutil. Sessions are kept per
// service ID, so every holder of a service's session sees the status its
// last Reload or LoadAll read.
type Manager struct {
	path       string
	providerID string
	name       string
	runner     Runner
	logger     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

// Options configures a Manager. Services are filtered by ProviderID and
// ServiceName when set.
type Options struct {
	Path        string
	ProviderID  string
	ServiceName string
	Runner      Runner
}

// NewManager creates a scutil-backed configuration manager.
func NewManager(opts Options, logger zerolog.Logger) *Manager {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	path := opts.Path
	if path == "" {
		path = "scutil"
	}
	return &Manager{
		path:       path,
		providerID: opts.ProviderID,
		name:       opts.ServiceName,
		runner:     runner,
		logger:     logger.With().Str("component", "scutil").Logger(),
		sessions:   make(map[string]*session),
	}
}

// LoadAll returns the matching VPN services, in scutil's order.
func (m *Manager) LoadAll(ctx context.Context) ([]tunnel.Configuration, error) {
	services, err := m.list(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]*session, len(services))
	configs := make([]tunnel.Configuration, 0, len(services))
	for _, svc := range services {
		s, ok := m.sessions[svc.ID]
		if ok {
			s.update(svc)
		} else {
			s = &session{manager: m, service: svc}
		}
		seen[svc.ID] = s
		configs = append(configs, &configuration{session: s})
	}
	m.sessions = seen
	return configs, nil
}

func (m *Manager) list(ctx context.Context) ([]Service, error) {
	out, err := m.runner.Run(ctx, m.path, "--nc", "list")
	if err != nil {
		return nil, fmt.Errorf("listing network services: %w", err)
	}
	var matched []Service
	for _, svc := range ParseList(out) {
		if svc.Type != "VPN" {
			continue
		}
		if m.providerID != "" && svc.ProviderID != m.providerID {
			continue
		}
		if m.name != "" && svc.Name != m.name {
			continue
		}
		matched = append(matched, svc)
	}
	return matched, nil
}

type configuration struct {
	session *session
}

func (c *configuration) Session() tunnel.Session {
	return c.session
}

var _ tunnel.Session = (*session)(nil)

// session caches the status reported when it was loaded, like the OS
// connection object it stands in for; Reload refreshes it.
type session struct {
	manager *Manager
	mu      sync.Mutex
	service Service
}

// update takes the status of a fresh listing. ID and Name are fixed for a
// session and are read without the lock.
func (s *session) update(svc Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service.Enabled = svc.Enabled
	s.service.Status = svc.Status
}

func (s *session) Status() domain.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service.Status
}

// Start connects the service. scutil has no channel for provider options,
// so only their keys are logged.
func (s *session) Start(ctx context.Context, options map[string]string) error {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	s.manager.logger.Debug().Str("service", s.service.ID).Strs("options", keys).Msg("starting service")

	if _, err := s.manager.runner.Run(ctx, s.manager.path, "--nc", "start", s.service.ID); err != nil {
		return fmt.Errorf("starting %s: %w", s.service.Name, err)
	}
	return nil
}

func (s *session) Stop(ctx context.Context) error {
	if _, err := s.manager.runner.Run(ctx, s.manager.path, "--nc", "stop", s.service.ID); err != nil {
		return fmt.Errorf("stopping %s: %w", s.service.Name, err)
	}
	return nil
}

func (s *session) Reload(ctx context.Context) error {
	out, err := s.manager.runner.Run(ctx, s.manager.path, "--nc", "status", s.service.ID)
	if err != nil {
		return fmt.Errorf("reading status of %s: %w", s.service.Name, err)
	}
	s.mu.Lock()
	s.service.Status = ParseStatus(out)
	s.mu.Unlock()
	return nil
}
