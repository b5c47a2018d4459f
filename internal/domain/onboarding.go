package domain

// OnboardingStep is an outstanding prerequisite before the tunnel can be used.
type OnboardingStep int

const (
	StepNeedsSystemExtensionApproval OnboardingStep = iota + 1
	StepNeedsVPNConfigurationApproval
)

// OnboardingStatus is either Completed or onboarding at a specific step.
// Progression is NeedsSystemExtensionApproval -> NeedsVPNConfigurationApproval
// -> Completed, and never goes backwards except through an explicit reset.
type OnboardingStatus struct {
	Completed bool
	Step      OnboardingStep
}

// Raw encodings persisted for each status.
const (
	onboardingRawCompleted       = "completed"
	onboardingRawSystemExtension = "onboarding.systemExtension"
	onboardingRawVPNConfig       = "onboarding.vpnConfiguration"
)

var (
	// OnboardingCompleted is the terminal status.
	OnboardingCompleted = OnboardingStatus{Completed: true}
	// OnboardingNeedsSystemExtension is the initial status on first run.
	OnboardingNeedsSystemExtension = OnboardingStatus{Step: StepNeedsSystemExtensionApproval}
	// OnboardingNeedsVPNConfiguration waits for the VPN configuration prompt.
	OnboardingNeedsVPNConfiguration = OnboardingStatus{Step: StepNeedsVPNConfigurationApproval}
)

// DefaultOnboardingStatus is the status used when nothing valid is stored.
func DefaultOnboardingStatus() OnboardingStatus {
	return OnboardingNeedsSystemExtension
}

// IsOnboarding reports whether a step is still outstanding.
func (s OnboardingStatus) IsOnboarding() bool {
	return !s.Completed
}

// RawValue encodes the status into its persisted string form.
func (s OnboardingStatus) RawValue() string {
	if s.Completed {
		return onboardingRawCompleted
	}
	switch s.Step {
	case StepNeedsVPNConfigurationApproval:
		return onboardingRawVPNConfig
	default:
		return onboardingRawSystemExtension
	}
}

// ParseOnboardingStatus decodes a persisted raw value. ok is false for values
// that are not one of the known encodings.
func ParseOnboardingStatus(raw string) (status OnboardingStatus, ok bool) {
	switch raw {
	case onboardingRawCompleted:
		return OnboardingCompleted, true
	case onboardingRawSystemExtension:
		return OnboardingNeedsSystemExtension, true
	case onboardingRawVPNConfig:
		return OnboardingNeedsVPNConfiguration, true
	default:
		return DefaultOnboardingStatus(), false
	}
}

func (s OnboardingStatus) String() string {
	return s.RawValue()
}

// MarshalText lets the status serialize as its raw value in API payloads.
func (s OnboardingStatus) MarshalText() ([]byte, error) {
	return []byte(s.RawValue()), nil
}
