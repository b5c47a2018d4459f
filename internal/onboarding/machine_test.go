package onboarding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/onboarding"
	"github.com/bcnelson/netguard/internal/storage"
	"github.com/bcnelson/netguard/internal/storage/memory"
)

func TestMachine_InitialStatus(t *testing.T) {
	m := onboarding.New(memory.New(), zerolog.Nop())

	status := m.Status(context.Background())
	assert.Equal(t, domain.OnboardingNeedsSystemExtension, status)
	assert.True(t, status.IsOnboarding())
}

func TestMachine_UnknownRawValueIsInitial(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"", "2", "onboarding", "COMPLETED"} {
		mem := memory.New()
		require.NoError(t, mem.Set(ctx, storage.KeyOnboardingStatus, []byte(raw)))

		assert.Equal(t, domain.OnboardingNeedsSystemExtension, onboarding.New(mem, zerolog.Nop()).Status(ctx), raw)
	}
}

func TestMachine_Progression(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	m := onboarding.New(mem, zerolog.Nop())

	status, err := m.SystemExtensionApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingNeedsVPNConfiguration, status)

	// Duplicate event is idempotent and does not skip ahead.
	status, err = m.SystemExtensionApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingNeedsVPNConfiguration, status)
	assert.Equal(t, domain.OnboardingNeedsVPNConfiguration, m.Status(ctx))

	status, err = m.VPNConfigurationApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingCompleted, status)
	assert.False(t, status.IsOnboarding())

	raw, err := mem.Get(ctx, storage.KeyOnboardingStatus)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(raw))
}

func TestMachine_NoSkipping(t *testing.T) {
	ctx := context.Background()
	m := onboarding.New(memory.New(), zerolog.Nop())

	status, err := m.VPNConfigurationApproved(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingNeedsSystemExtension, status)
}

func TestMachine_CompletedIsTerminal(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	require.NoError(t, mem.Set(ctx, storage.KeyOnboardingStatus, []byte("completed")))
	m := onboarding.New(mem, zerolog.Nop())

	for _, event := range []func(context.Context) (domain.OnboardingStatus, error){
		m.SystemExtensionApproved, m.VPNConfigurationApproved,
	} {
		status, err := event(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.OnboardingCompleted, status)
	}
}

func TestMachine_Reset(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	require.NoError(t, mem.Set(ctx, storage.KeyOnboardingStatus, []byte("completed")))
	m := onboarding.New(mem, zerolog.Nop())

	status, err := m.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.OnboardingNeedsSystemExtension, status)
	assert.Equal(t, domain.OnboardingNeedsSystemExtension, m.Status(ctx))
}

func TestMachine_WriteFailureKeepsStatus(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	boom := errors.New("read-only")
	mem.FailSet(storage.KeyOnboardingStatus, boom)
	m := onboarding.New(mem, zerolog.Nop())

	status, err := m.SystemExtensionApproved(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.OnboardingNeedsSystemExtension, status)
}

func TestMachine_ReadFailureNeverRegresses(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	m := onboarding.New(mem, zerolog.Nop())
	_, err := m.SystemExtensionApproved(ctx)
	require.NoError(t, err)
	_, err = m.VPNConfigurationApproved(ctx)
	require.NoError(t, err)

	boom := errors.New("io error")
	mem.FailGet(storage.KeyOnboardingStatus, boom)

	_, err = m.SystemExtensionApproved(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = m.VPNConfigurationApproved(ctx)
	assert.ErrorIs(t, err, boom)

	mem.FailGet(storage.KeyOnboardingStatus, nil)
	assert.Equal(t, domain.OnboardingCompleted, m.Status(ctx))
	raw, err := mem.Get(ctx, storage.KeyOnboardingStatus)
	require.NoError(t, err)
	assert.Equal(t, "completed", string(raw))
}
