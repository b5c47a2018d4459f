package redemption_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/redemption"
)

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/redeem", r.URL.Path)
		assert.Equal(t, "netguard-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "1.2.3", r.Header.Get("X-App-Version"))

		var req domain.RedeemRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "INVITE", req.Code)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newClient(baseURL string) *redemption.Client {
	return redemption.NewClient(redemption.ClientOptions{
		BaseURL:    baseURL + "/api/",
		Timeout:    5 * time.Second,
		UserAgent:  "netguard-test",
		AppVersion: "1.2.3",
	})
}

func TestClient_RedeemInviteCode(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantKind  domain.RedeemFailure
		wantErrIs error
	}{
		{"success", http.StatusOK, `{"token":"tok-1"}`, "tok-1", 0, nil},
		{"created", http.StatusCreated, `{"token":"tok-2"}`, "tok-2", 0, nil},
		{"missing token", http.StatusOK, `{}`, "", domain.RedeemFailureMalformedResponse, domain.ErrMalformedRedeemResponse},
		{"bad json", http.StatusOK, `{"token":`, "", domain.RedeemFailureMalformedResponse, domain.ErrMalformedRedeemResponse},
		{"rejected", http.StatusBadRequest, `{"message":"invalid_code"}`, "", domain.RedeemFailureInvalidCode, domain.ErrInvalidInviteCode},
		{"already used", http.StatusGone, ``, "", domain.RedeemFailureInvalidCode, domain.ErrInvalidInviteCode},
		{"server error", http.StatusInternalServerError, `oops`, "", domain.RedeemFailureNetwork, domain.ErrRedeemNetwork},
		{"unavailable", http.StatusServiceUnavailable, ``, "", domain.RedeemFailureNetwork, domain.ErrRedeemNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newBackend(t, tt.status, tt.body)

			token, err := newClient(srv.URL).RedeemInviteCode(context.Background(), "INVITE")
			assert.Equal(t, 1, *calls, "no retries")

			if tt.wantErrIs == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErrIs)

			var redeemErr *domain.RedeemError
			require.True(t, errors.As(err, &redeemErr))
			assert.Equal(t, tt.wantKind, redeemErr.Kind)
			assert.Equal(t, tt.status, redeemErr.StatusCode)
		})
	}
}

func TestClient_RejectionMessage(t *testing.T) {
	srv, _ := newBackend(t, http.StatusBadRequest, `{"message":"code expired"}`)

	_, err := newClient(srv.URL).RedeemInviteCode(context.Background(), "INVITE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "code expired")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).RedeemInviteCode(context.Background(), "INVITE")
	assert.ErrorIs(t, err, domain.ErrRedeemNetwork)
}
