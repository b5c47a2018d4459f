package tunnel_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tunnel"
)

func TestMonitor_PollEmitsOnChange(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession(domain.StatusDisconnected)
	manager := &fakeManager{configs: []tunnel.Configuration{fakeConfig{session}}}
	locator := tunnel.NewLocator(manager, zerolog.Nop())

	var seen []domain.ConnectionStatus
	m := tunnel.NewMonitor(locator, time.Hour, func(s tunnel.Session) {
		seen = append(seen, s.Status())
	}, zerolog.Nop())

	m.Poll(ctx)
	m.Poll(ctx)
	session.setStatus(domain.StatusConnecting)
	m.Poll(ctx)
	session.setStatus(domain.StatusConnected)
	m.Poll(ctx)
	m.Poll(ctx)

	assert.Equal(t, []domain.ConnectionStatus{
		domain.StatusDisconnected,
		domain.StatusConnecting,
		domain.StatusConnected,
	}, seen)
}

func TestMonitor_InvalidStatusKicksReloadOnce(t *testing.T) {
	ctx := context.Background()
	session := newFakeSession(domain.StatusInvalid)
	manager := &fakeManager{configs: []tunnel.Configuration{fakeConfig{session}}}
	locator := tunnel.NewLocator(manager, zerolog.Nop())

	called := 0
	m := tunnel.NewMonitor(locator, time.Hour, func(tunnel.Session) { called++ }, zerolog.Nop())

	m.Poll(ctx)
	m.Poll(ctx)
	locator.Wait()

	assert.Equal(t, 1, session.reloadCount())
	assert.Zero(t, called)

	session.setStatus(domain.StatusConnected)
	m.Poll(ctx)
	assert.Equal(t, 1, called)
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	manager := &fakeManager{}
	locator := tunnel.NewLocator(manager, zerolog.Nop())
	m := tunnel.NewMonitor(locator, 5*time.Millisecond, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	assert.Eventually(t, func() bool {
		manager.mu.Lock()
		defer manager.mu.Unlock()
		return manager.loads >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
