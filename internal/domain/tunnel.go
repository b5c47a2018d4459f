package domain

import "strings"

// ConnectionStatus mirrors the OS VPN connection states.
type ConnectionStatus int

const (
	// StatusInvalid is reported by a configuration object that is out of
	// sync with the system preferences; it must be reloaded.
	StatusInvalid ConnectionStatus = iota
	StatusDisconnected
	StatusConnecting
	StatusConnected
	StatusReasserting
	StatusDisconnecting
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusInvalid:
		return "invalid"
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReasserting:
		return "reasserting"
	case StatusDisconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// ParseConnectionStatus maps a status word (case-insensitive) to a
// ConnectionStatus. Unknown words map to StatusInvalid.
func ParseConnectionStatus(s string) ConnectionStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disconnected":
		return StatusDisconnected
	case "connecting":
		return StatusConnecting
	case "connected":
		return StatusConnected
	case "reasserting":
		return StatusReasserting
	case "disconnecting":
		return StatusDisconnecting
	default:
		return StatusInvalid
	}
}

// IsActive reports whether the tunnel is up or on its way up.
func (s ConnectionStatus) IsActive() bool {
	switch s {
	case StatusConnected, StatusConnecting, StatusReasserting:
		return true
	default:
		return false
	}
}

// MarshalText serializes the status as its name.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Tunnel start option keys.
const (
	OptionActivationAttemptID = "activationAttemptId"
	OptionAuthToken           = "authToken"
)

// TunnelStatusResponse is returned by the tunnel status endpoint.
type TunnelStatusResponse struct {
	Status     ConnectionStatus `json:"status"`
	Onboarding OnboardingStatus `json:"onboarding"`
}
