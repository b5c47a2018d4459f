package scutil_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/tunnel/scutil"
)

const listOutput = `Available network connection services in the current set (*=enabled):
* (Connected)      6B5A3C1E-0000-4000-8000-000000000001 VPN (com.example.vpn.extension) "NetGuard"                 [VPN/com.example.vpn.extension]
* (Disconnected)   6B5A3C1E-0000-4000-8000-000000000002 VPN (com.other.vpn) "Other VPN"                            [VPN/com.other.vpn]
  (Disconnected)   6B5A3C1E-0000-4000-8000-000000000003 IPSec "Office"                                             [IPSec]
`

type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	err     error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.outputs[strings.Join(args, " ")]), nil
}

func TestParseList(t *testing.T) {
	services := scutil.ParseList([]byte(listOutput))
	require.Len(t, services, 3)

	assert.Equal(t, scutil.Service{
		Enabled:    true,
		Status:     domain.StatusConnected,
		ID:         "6B5A3C1E-0000-4000-8000-000000000001",
		Type:       "VPN",
		ProviderID: "com.example.vpn.extension",
		Name:       "NetGuard",
	}, services[0])
	assert.Equal(t, domain.StatusDisconnected, services[1].Status)
	assert.False(t, services[2].Enabled)
	assert.Equal(t, "IPSec", services[2].Type)
	assert.Empty(t, services[2].ProviderID)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, domain.StatusConnecting, scutil.ParseStatus([]byte("Connecting\nExtended Status <dictionary> {\n}\n")))
	assert.Equal(t, domain.StatusInvalid, scutil.ParseStatus([]byte("No service\n")))
	assert.Equal(t, domain.StatusInvalid, scutil.ParseStatus(nil))
}

func TestManager_LoadAllFiltersByProvider(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"--nc list": listOutput}}
	m := scutil.NewManager(scutil.Options{
		Path:       "/usr/sbin/scutil",
		ProviderID: "com.other.vpn",
		Runner:     runner,
	}, zerolog.Nop())

	configs, err := m.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	assert.Equal(t, domain.StatusDisconnected, configs[0].Session().Status())
	assert.Equal(t, []string{"/usr/sbin/scutil --nc list"}, runner.calls)
}

func TestManager_LoadAllSkipsNonVPN(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{"--nc list": listOutput}}
	m := scutil.NewManager(scutil.Options{ServiceName: "Office", Runner: runner}, zerolog.Nop())

	configs, err := m.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestManager_LoadAllError(t *testing.T) {
	boom := errors.New("exit status 1")
	m := scutil.NewManager(scutil.Options{Runner: &fakeRunner{err: boom}}, zerolog.Nop())

	_, err := m.LoadAll(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSession_Commands(t *testing.T) {
	const id = "6B5A3C1E-0000-4000-8000-000000000001"
	runner := &fakeRunner{outputs: map[string]string{
		"--nc list":         listOutput,
		"--nc status " + id: "Disconnected\n",
	}}
	m := scutil.NewManager(scutil.Options{Path: "scutil", ProviderID: "com.example.vpn.extension", Runner: runner}, zerolog.Nop())

	configs, err := m.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 1)
	session := configs[0].Session()

	ctx := context.Background()
	require.NoError(t, session.Start(ctx, map[string]string{domain.OptionAuthToken: "secret"}))
	require.NoError(t, session.Stop(ctx))
	require.NoError(t, session.Reload(ctx))
	assert.Equal(t, domain.StatusDisconnected, session.Status())

	assert.Equal(t, []string{
		"scutil --nc list",
		"scutil --nc start " + id,
		"scutil --nc stop " + id,
		"scutil --nc status " + id,
	}, runner.calls)
}

func TestManager_SessionsSharedByServiceID(t *testing.T) {
	const id = "6B5A3C1E-0000-4000-8000-000000000001"
	runner := &fakeRunner{outputs: map[string]string{
		"--nc list":         listOutput,
		"--nc status " + id: "Connecting\n",
	}}
	m := scutil.NewManager(scutil.Options{ProviderID: "com.example.vpn.extension", Runner: runner}, zerolog.Nop())
	ctx := context.Background()

	first, err := m.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	held := first[0].Session()
	assert.Equal(t, domain.StatusConnected, held.Status())

	tests := []struct {
		name   string
		list   string
		reload bool
		want   domain.ConnectionStatus
	}{
		{"reload of a fresh session reaches the held one", listOutput, true, domain.StatusConnecting},
		{"later listing updates the held session", strings.Replace(listOutput, "(Connected)", "(Disconnected)", 1), false, domain.StatusDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner.mu.Lock()
			runner.outputs["--nc list"] = tt.list
			runner.mu.Unlock()

			configs, err := m.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, configs, 1)
			fresh := configs[0].Session()
			assert.Same(t, held, fresh)

			if tt.reload {
				require.NoError(t, fresh.Reload(ctx))
			}
			assert.Equal(t, tt.want, held.Status())
		})
	}
}
