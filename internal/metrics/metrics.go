// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedemptionsTotal counts invite code redemptions by result
	// ("success", "network", "invalid_code", "malformed_response",
	// "canceled", "store_error").
	RedemptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_redemptions_total",
			Help: "Invite code redemptions by result",
		},
		[]string{"result"},
	)

	ExpansionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netguard_rule_expansions_total",
		Help: "Routing rule expansions performed",
	})

	DerivedRules = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "netguard_derived_rules",
		Help: "Rules derived for embedded bundles by the last expansion",
	})

	BundleScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "netguard_bundle_scan_duration_seconds",
		Help:    "Time spent scanning one app bundle for embedded bundles",
		Buckets: prometheus.DefBuckets,
	})

	SessionReloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "netguard_session_reloads_total",
		Help: "Tunnel configuration reloads kicked by an invalid connection status",
	})

	TunnelStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netguard_tunnel_status",
			Help: "1 for the current tunnel connection status, 0 otherwise",
		},
		[]string{"status"},
	)

	LaunchCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_launch_commands_total",
			Help: "Commands sent to the companion app launcher",
		},
		[]string{"command", "result"},
	)

	AppliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netguard_rule_applies_total",
			Help: "Rule snapshots pushed to the proxy settings sink",
		},
		[]string{"result"},
	)
)

// SetTunnelStatus marks status as the only active tunnel status.
func SetTunnelStatus(status string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == status {
			v = 1
		}
		TunnelStatus.WithLabelValues(s).Set(v)
	}
}
