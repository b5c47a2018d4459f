package tunnel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tunnel"
)

func TestLocator_ActiveSession(t *testing.T) {
	first := newFakeSession(domain.StatusConnected)
	second := newFakeSession(domain.StatusDisconnected)

	tests := []struct {
		name    string
		configs []tunnel.Configuration
		want    tunnel.Session
	}{
		{"no configurations", nil, nil},
		{"configuration without session", []tunnel.Configuration{fakeConfig{}}, nil},
		{"first configuration wins", []tunnel.Configuration{fakeConfig{first}, fakeConfig{second}}, first},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := &fakeManager{configs: tt.configs}
			got, err := tunnel.NewLocator(manager, zerolog.Nop()).ActiveSession(context.Background())
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.Same(t, tt.want, got)
		})
	}
}

func TestLocator_ActiveSessionPassesErrorThrough(t *testing.T) {
	boom := errors.New("preferences unavailable")
	_, err := tunnel.NewLocator(&fakeManager{err: boom}, zerolog.Nop()).ActiveSession(context.Background())
	assert.Same(t, boom, err)
}

func TestLocator_SessionFromStatusChange_Valid(t *testing.T) {
	locator := tunnel.NewLocator(&fakeManager{}, zerolog.Nop())

	for _, status := range []domain.ConnectionStatus{
		domain.StatusDisconnected, domain.StatusConnecting, domain.StatusConnected,
		domain.StatusReasserting, domain.StatusDisconnecting,
	} {
		session := newFakeSession(status)
		got := locator.SessionFromStatusChange(tunnel.StatusChangeEvent{Object: session})
		assert.Same(t, session, got)
		locator.Wait()
		assert.Zero(t, session.reloadCount(), "no reload for %s", status)
	}
}

func TestLocator_SessionFromStatusChange_InvalidKicksOneReload(t *testing.T) {
	locator := tunnel.NewLocator(&fakeManager{}, zerolog.Nop())
	session := newFakeSession(domain.StatusInvalid)
	session.reloadErr = errors.New("reload failed")

	got := locator.SessionFromStatusChange(tunnel.StatusChangeEvent{Object: session})
	assert.Nil(t, got)

	locator.Wait()
	assert.Equal(t, 1, session.reloadCount())
}

func TestLocator_SessionFromStatusChange_ForeignSubject(t *testing.T) {
	locator := tunnel.NewLocator(&fakeManager{}, zerolog.Nop())

	assert.Nil(t, locator.SessionFromStatusChange(tunnel.StatusChangeEvent{Object: "not a session"}))
	assert.Nil(t, locator.SessionFromStatusChange(tunnel.StatusChangeEvent{}))
}
