package tunnel_test

import (
	"context"
	"sync"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tunnel"
)

type fakeSession struct {
	mu        sync.Mutex
	status    domain.ConnectionStatus
	reloads   int
	reloaded  chan struct{}
	starts    []map[string]string
	stops     int
	startErr  error
	reloadErr error
}

func newFakeSession(status domain.ConnectionStatus) *fakeSession {
	return &fakeSession{status: status, reloaded: make(chan struct{}, 16)}
}

func (s *fakeSession) Status() domain.ConnectionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *fakeSession) setStatus(status domain.ConnectionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

func (s *fakeSession) Start(_ context.Context, options map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, options)
	return s.startErr
}

func (s *fakeSession) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *fakeSession) Reload(context.Context) error {
	s.mu.Lock()
	s.reloads++
	s.mu.Unlock()
	s.reloaded <- struct{}{}
	return s.reloadErr
}

func (s *fakeSession) reloadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloads
}

type fakeConfig struct {
	session tunnel.Session
}

func (c fakeConfig) Session() tunnel.Session { return c.session }

type fakeManager struct {
	mu      sync.Mutex
	configs []tunnel.Configuration
	err     error
	loads   int
}

func (m *fakeManager) LoadAll(context.Context) ([]tunnel.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.configs, m.err
}

func (m *fakeManager) set(configs ...tunnel.Configuration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = configs
}
