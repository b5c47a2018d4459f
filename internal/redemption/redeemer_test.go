package redemption_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/redemption"
	"github.com/bcnelson/netguard/internal/storage"
	"github.com/bcnelson/netguard/internal/storage/memory"
	"github.com/bcnelson/netguard/internal/tokenstore"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) RedeemInviteCode(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

var testKey = [32]byte{1, 2, 3}

type fixture struct {
	mem      *memory.Store
	tokens   *tokenstore.Sealed
	versions *redemption.StorageVersionStore
	backend  *mockBackend
	redeemer *redemption.Redeemer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memory.New()
	f := &fixture{
		mem:      mem,
		tokens:   tokenstore.New(mem, &testKey),
		versions: redemption.NewVersionStore(mem),
		backend:  &mockBackend{},
	}
	f.redeemer = redemption.NewRedeemer(f.backend, f.tokens, f.versions, "2.0.0", zerolog.Nop())
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.tokens.StoreToken(ctx, "old-token"))
	require.NoError(t, f.versions.SetLastVersionRun(ctx, "1.0.0"))
}

func (f *fixture) assertUnchanged(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	token, err := f.tokens.FetchToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "old-token", token)

	version, err := f.versions.LastVersionRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", version)
}

func TestRedeem_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.backend.On("RedeemInviteCode", mock.Anything, "CODE").Return("new-token", nil).Once()

	require.NoError(t, f.redeemer.Redeem(ctx, "CODE"))

	token, err := f.tokens.FetchToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)

	version, err := f.versions.LastVersionRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", version)

	assert.Equal(t, []string{storage.KeyAuthToken, storage.KeyLastVersionRun}, f.mem.Writes(),
		"token then version, no other keys")
	f.backend.AssertExpectations(t)
}

func TestRedeem_OverwritesPreviousToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	f.backend.On("RedeemInviteCode", mock.Anything, "CODE").Return("newer", nil)

	require.NoError(t, f.redeemer.Redeem(ctx, "CODE"))

	token, err := f.tokens.FetchToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "newer", token)
}

func TestRedeem_BackendFailureWritesNothing(t *testing.T) {
	failures := []error{
		domain.NewRedeemError(domain.RedeemFailureNetwork, 0, errors.New("connection refused")),
		domain.NewRedeemError(domain.RedeemFailureInvalidCode, 400, nil),
		domain.NewRedeemError(domain.RedeemFailureMalformedResponse, 200, nil),
	}
	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			f := newFixture(t)
			f.seed(t)
			writesBefore := len(f.mem.Writes())
			f.backend.On("RedeemInviteCode", mock.Anything, "CODE").Return("", failure)

			err := f.redeemer.Redeem(context.Background(), "CODE")
			assert.Same(t, failure, err, "backend errors pass through unchanged")

			f.assertUnchanged(t)
			assert.Len(t, f.mem.Writes(), writesBefore)
		})
	}
}

func TestRedeem_TokenWriteFailureSkipsVersion(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	boom := errors.New("keychain locked")
	f.mem.FailSet(storage.KeyAuthToken, boom)
	f.backend.On("RedeemInviteCode", mock.Anything, "CODE").Return("new-token", nil)

	err := f.redeemer.Redeem(context.Background(), "CODE")
	assert.ErrorIs(t, err, boom)

	f.mem.FailSet(storage.KeyAuthToken, nil)
	f.assertUnchanged(t)
}

func TestRedeem_CanceledAfterNetworkWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	writesBefore := len(f.mem.Writes())

	ctx, cancel := context.WithCancel(context.Background())
	f.backend.On("RedeemInviteCode", mock.Anything, "CODE").
		Run(func(mock.Arguments) { cancel() }).
		Return("new-token", nil)

	err := f.redeemer.Redeem(ctx, "CODE")
	assert.ErrorIs(t, err, context.Canceled)

	f.assertUnchanged(t)
	assert.Len(t, f.mem.Writes(), writesBefore)
}

func TestVersionStore_Empty(t *testing.T) {
	version, err := redemption.NewVersionStore(memory.New()).LastVersionRun(context.Background())
	require.NoError(t, err)
	assert.Empty(t, version)
}
