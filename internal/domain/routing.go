package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// AppIdentifier is an application's bundle identifier, e.g. "com.example.App".
//
// Identity is the raw string only. Nothing binds it to a code signature, so a
// process can claim another app's identifier; rules inherit that limitation.
type AppIdentifier string

// RoutingRule is a per-app tunnel policy. An app with no rule follows the
// default tunnel behavior and simply has no entry in a RuleSet.
type RoutingRule string

const (
	// RuleBlock denies all network traffic for the app.
	RuleBlock RoutingRule = "block"
	// RuleExclude routes the app's traffic outside the tunnel.
	RuleExclude RoutingRule = "exclude"
)

// ParseRoutingRule converts a string into a RoutingRule.
func ParseRoutingRule(s string) (RoutingRule, error) {
	switch RoutingRule(s) {
	case RuleBlock, RuleExclude:
		return RoutingRule(s), nil
	default:
		return "", fmt.Errorf("unknown routing rule: %q", s)
	}
}

// UnmarshalJSON rejects anything other than the two known rule values.
func (r *RoutingRule) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRoutingRule(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RuleSet is the user-authored, persisted mapping of app to routing rule.
type RuleSet map[AppIdentifier]RoutingRule

// ExpandedRuleSet is a RuleSet plus rules derived for apps embedded inside
// the referenced bundles. It is recomputed on demand and never persisted.
type ExpandedRuleSet map[AppIdentifier]RoutingRule

// Clone returns an independent copy of the rule set.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for id, rule := range rs {
		out[id] = rule
	}
	return out
}

// Identifiers returns the rule set keys in sorted order.
func (rs RuleSet) Identifiers() []AppIdentifier {
	ids := make([]AppIdentifier, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RuleFor returns the rule for id and whether one exists.
func (ers ExpandedRuleSet) RuleFor(id AppIdentifier) (RoutingRule, bool) {
	rule, ok := ers[id]
	return rule, ok
}

// AppRule is one entry of a rule set, used in API payloads and snapshots.
type AppRule struct {
	BundleID AppIdentifier `json:"bundleId"`
	Rule     RoutingRule   `json:"rule"`
	Derived  bool          `json:"derived,omitempty"`
}

// ExpandedEntries flattens an expanded rule set into sorted entries, marking
// those not present in the original set as derived.
func ExpandedEntries(original RuleSet, expanded ExpandedRuleSet) []AppRule {
	entries := make([]AppRule, 0, len(expanded))
	for id, rule := range expanded {
		_, explicit := original[id]
		entries = append(entries, AppRule{BundleID: id, Rule: rule, Derived: !explicit})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].BundleID < entries[j].BundleID })
	return entries
}

// FlowPath is the routing outcome for a single network flow.
type FlowPath int

const (
	// PathTunnel sends the flow through the tunnel (default).
	PathTunnel FlowPath = iota
	// PathBlock drops the flow.
	PathBlock
	// PathExclude sends the flow out the direct interface.
	PathExclude
	// PathIgnore leaves the flow to the system (DNS).
	PathIgnore
)

func (p FlowPath) String() string {
	switch p {
	case PathTunnel:
		return "tunnel"
	case PathBlock:
		return "block"
	case PathExclude:
		return "exclude"
	case PathIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// FlowReason says which kind of rule produced a block or exclude decision.
type FlowReason string

const (
	ReasonNone       FlowReason = ""
	ReasonAppRule    FlowReason = "app_rule"
	ReasonDomainRule FlowReason = "domain_rule"
)

// FlowDecision pairs a FlowPath with the reason for it.
type FlowDecision struct {
	Path   FlowPath
	Reason FlowReason
}
