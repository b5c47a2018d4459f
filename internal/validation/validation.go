// Package validation provides validation functions for routing rule
// identifiers, excluded domains and invite codes.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	maxBundleIDLength   = 255
	maxDomainLength     = 253
	maxLabelLength      = 63
	maxInviteCodeLength = 128
)

// isAlpha returns true if the byte is an ASCII letter.
func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isNum returns true if the byte is an ASCII digit.
func isNum(b byte) bool {
	return b >= '0' && b <= '9'
}

// isAlphaNum returns true if the byte is an ASCII letter or digit.
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isNum(b)
}

// ValidateBundleID validates an app bundle identifier in reverse-DNS form,
// e.g. com.example.App. Segments may contain letters, numbers and hyphens.
func ValidateBundleID(id string) error {
	if id == "" {
		return fmt.Errorf("bundle identifier must not be empty")
	}
	if len(id) > maxBundleIDLength {
		return fmt.Errorf("bundle identifier must be at most %d characters", maxBundleIDLength)
	}
	segments := strings.Split(id, ".")
	if len(segments) < 2 {
		return fmt.Errorf("bundle identifier must have at least two dot-separated segments")
	}
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("bundle identifier must not contain empty segments")
		}
		for _, b := range []byte(seg) {
			if !isAlphaNum(b) && b != '-' {
				return fmt.Errorf("bundle identifier segments can only contain letters, numbers, or hyphens")
			}
		}
	}
	return nil
}

// ValidateDomain validates an excluded domain name. A trailing dot is
// allowed; wildcards and schemes are not.
func ValidateDomain(domain string) error {
	d := strings.TrimSuffix(domain, ".")
	if d == "" {
		return fmt.Errorf("domain must not be empty")
	}
	if len(d) > maxDomainLength {
		return fmt.Errorf("domain must be at most %d characters", maxDomainLength)
	}
	for _, label := range strings.Split(d, ".") {
		if err := validateLabel(label); err != nil {
			return err
		}
	}
	return nil
}

func validateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("domain must not contain empty labels")
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("domain labels must be at most %d characters", maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("domain labels must not start or end with a hyphen")
	}
	for _, b := range []byte(label) {
		if !isAlphaNum(b) && b != '-' {
			return fmt.Errorf("domain labels can only contain letters, numbers, or hyphens")
		}
	}
	return nil
}

// ValidateInviteCode validates a user-entered invite code before it is
// sent to the backend.
func ValidateInviteCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("invite code must not be empty")
	}
	if len(code) > maxInviteCodeLength {
		return fmt.Errorf("invite code must be at most %d characters", maxInviteCodeLength)
	}
	for _, r := range code {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return fmt.Errorf("invite code must not contain whitespace or control characters")
		}
	}
	return nil
}

// ValidateRuleSet validates every identifier in a set of rule requests and
// collects all failures.
func ValidateRuleSet(ids []string) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		field := fmt.Sprintf("rules[%d].bundleId", i)
		if err := ValidateBundleID(id); err != nil {
			errs.Add(field, id, err.Error())
			continue
		}
		if seen[id] {
			errs.Add(field, id, "duplicate bundle identifier")
		}
		seen[id] = true
	}
	return errs
}
