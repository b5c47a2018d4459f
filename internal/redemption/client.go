// Package redemption exchanges invite codes for backend auth tokens.
package redemption

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bcnelson/netguard/internal/domain"
)

// BackendClient performs the redemption network exchange. Failures are
// *domain.RedeemError values.
type BackendClient interface {
	RedeemInviteCode(ctx context.Context, code string) (token string, err error)
}

var _ BackendClient = (*Client)(nil)

// Client talks to the redemption backend over HTTP.
type Client struct {
	resty *resty.Client
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	AppVersion string
	HTTPClient *http.Client
}

// NewClient creates a backend client. It never retries; callers decide.
func NewClient(opts ClientOptions) *Client {
	var r *resty.Client
	if opts.HTTPClient != nil {
		r = resty.NewWithClient(opts.HTTPClient)
	} else {
		r = resty.New()
	}
	r.SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		r.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		r.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.AppVersion != "" {
		r.SetHeader("X-App-Version", opts.AppVersion)
	}
	return &Client{resty: r}
}

// RedeemInviteCode posts code to /redeem and returns the issued token.
//
// Status mapping: 2xx with a token is success; 400, 401, 403, 404, 410
// and 422 mean the code was rejected; other statuses and transport errors
// are network failures; an undecodable or token-less body is malformed.
func (c *Client) RedeemInviteCode(ctx context.Context, code string) (string, error) {
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(domain.RedeemRequest{Code: code}).
		Post("/redeem")
	if err != nil {
		return "", domain.NewRedeemError(domain.RedeemFailureNetwork, 0, err)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		var payload domain.RedeemResponse
		if err := json.Unmarshal(resp.Body(), &payload); err != nil {
			return "", domain.NewRedeemError(domain.RedeemFailureMalformedResponse, status, err)
		}
		if payload.Token == "" {
			return "", domain.NewRedeemError(domain.RedeemFailureMalformedResponse, status, errors.New("response has no token"))
		}
		return payload.Token, nil

	case isRejection(status):
		return "", domain.NewRedeemError(domain.RedeemFailureInvalidCode, status, errorMessage(resp.Body()))

	default:
		return "", domain.NewRedeemError(domain.RedeemFailureNetwork, status, errorMessage(resp.Body()))
	}
}

func isRejection(status int) bool {
	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusGone, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// errorMessage extracts the backend's message, if the body carries one.
func errorMessage(body []byte) error {
	var payload domain.RedeemErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return nil
	}
	return errors.New(payload.Message)
}
