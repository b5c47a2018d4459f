package domain

import "time"

// ReplaceRulesRequest is the request body for replacing the whole rule set.
type ReplaceRulesRequest struct {
	Rules []AppRuleRequest `json:"rules" validate:"dive"`
}

// AppRuleRequest is one rule in a replace request.
type AppRuleRequest struct {
	BundleID string `json:"bundleId" validate:"required,bundleid"`
	Rule     string `json:"rule" validate:"required,oneof=block exclude"`
}

// SetRuleRequest is the request body for setting a single app's rule.
type SetRuleRequest struct {
	Rule string `json:"rule" validate:"required,oneof=block exclude"`
}

// RulesResponse lists rules sorted by bundle identifier.
type RulesResponse struct {
	Rules []AppRule `json:"rules"`
}

// DomainsRequest replaces the excluded domain list.
type DomainsRequest struct {
	Domains []string `json:"domains" validate:"dive,required,domainname"`
}

// DomainsResponse lists excluded domains.
type DomainsResponse struct {
	Domains []string `json:"domains"`
}

// RedeemCodeRequest is the control API body for invite code redemption.
type RedeemCodeRequest struct {
	Code string `json:"code" validate:"required,max=128"`
}

// ApplyResponse reports a rule push to the proxy.
type ApplyResponse struct {
	SnapshotID  string    `json:"snapshotId"`
	ETag        string    `json:"etag"`
	RuleCount   int       `json:"ruleCount"`
	DerivedRule int       `json:"derivedRuleCount"`
	Changed     bool      `json:"changed"`
	AppliedAt   time.Time `json:"appliedAt"`
}

// ExpandedRulesResponse lists the expanded rules without applying them.
type ExpandedRulesResponse struct {
	Rules           []AppRule `json:"rules"`
	ExcludedDomains []string  `json:"excludedDomains"`
}

// OnboardingResponse reports the onboarding status.
type OnboardingResponse struct {
	Status       OnboardingStatus `json:"status"`
	IsOnboarding bool             `json:"isOnboarding"`
}
