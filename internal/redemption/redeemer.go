package redemption

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/bcnelson/netguard/internal/domain"
	"github.com/bcnelson/netguard/internal/metrics"
	"github.com/bcnelson/netguard/internal/tokenstore"
)

// Redeemer redeems invite codes and commits the resulting token and the
// current app version.
//
// Writes happen only after the backend succeeds, token first. A failed
// token write leaves the version untouched. Redeemer does not serialize
// concurrent calls; racing redemptions are last-write-wins on both stores.
type Redeemer struct {
	client     BackendClient
	tokens     tokenstore.TokenStore
	versions   VersionStore
	appVersion string
	logger     zerolog.Logger
}

// NewRedeemer creates a Redeemer recording appVersion on success.
func NewRedeemer(client BackendClient, tokens tokenstore.TokenStore, versions VersionStore, appVersion string, logger zerolog.Logger) *Redeemer {
	return &Redeemer{
		client:     client,
		tokens:     tokens,
		versions:   versions,
		appVersion: appVersion,
		logger:     logger.With().Str("component", "redemption").Logger(),
	}
}

// Redeem exchanges code for a token. Backend failures are returned as-is
// (a *domain.RedeemError); nothing is retried.
func (r *Redeemer) Redeem(ctx context.Context, code string) error {
	token, err := r.client.RedeemInviteCode(ctx, code)
	if err != nil {
		r.record(err)
		r.logger.Warn().Err(err).Msg("invite code redemption failed")
		return err
	}

	if err := ctx.Err(); err != nil {
		metrics.RedemptionsTotal.WithLabelValues("canceled").Inc()
		return err
	}

	if err := r.tokens.StoreToken(ctx, token); err != nil {
		metrics.RedemptionsTotal.WithLabelValues("store_error").Inc()
		r.logger.Error().Err(err).Msg("storing auth token failed")
		return err
	}

	if err := r.versions.SetLastVersionRun(ctx, r.appVersion); err != nil {
		metrics.RedemptionsTotal.WithLabelValues("store_error").Inc()
		r.logger.Error().Err(err).Msg("recording last version run failed")
		return err
	}

	metrics.RedemptionsTotal.WithLabelValues("success").Inc()
	r.logger.Info().Str("version", r.appVersion).Msg("invite code redeemed")
	return nil
}

func (r *Redeemer) record(err error) {
	result := "network"
	var redeemErr *domain.RedeemError
	if errors.As(err, &redeemErr) {
		result = redeemErr.Kind.String()
	} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result = "canceled"
	}
	metrics.RedemptionsTotal.WithLabelValues(result).Inc()
}
