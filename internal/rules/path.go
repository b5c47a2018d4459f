package rules

import (
	"strings"

	"github.com/bcnelson/netguard/internal/domain"
)

const dnsPort = 53

// Flow describes an outbound connection seen by the proxy.
type Flow struct {
	App      domain.AppIdentifier
	Hostname string
	Port     int
}

// PathFor decides how a flow is routed. DNS is never handled. An app rule
// takes precedence over excluded domains; anything else goes through the
// tunnel.
func PathFor(rules domain.ExpandedRuleSet, excludedDomains []string, flow Flow) domain.FlowDecision {
	if flow.Port == dnsPort {
		return domain.FlowDecision{Path: domain.PathIgnore}
	}

	if rule, ok := rules.RuleFor(flow.App); ok {
		switch rule {
		case domain.RuleBlock:
			return domain.FlowDecision{Path: domain.PathBlock, Reason: domain.ReasonAppRule}
		case domain.RuleExclude:
			return domain.FlowDecision{Path: domain.PathExclude, Reason: domain.ReasonAppRule}
		}
	}

	if MatchesDomain(flow.Hostname, excludedDomains) {
		return domain.FlowDecision{Path: domain.PathExclude, Reason: domain.ReasonDomainRule}
	}

	return domain.FlowDecision{Path: domain.PathTunnel}
}

// MatchesDomain reports whether host equals one of domains or is a
// subdomain of one.
func MatchesDomain(host string, domains []string) bool {
	host = normalizeHost(host)
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = normalizeHost(d)
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
