package domain

// LaunchCommand is a request for the companion app, delivered by the
// external process launcher.
type LaunchCommand string

const (
	CommandStartVPN              LaunchCommand = "startVPN"
	CommandStopVPN               LaunchCommand = "stopVPN"
	CommandJustOpen              LaunchCommand = "justOpen"
	CommandShowSettings          LaunchCommand = "showSettings"
	CommandManageExcludedApps    LaunchCommand = "manageExcludedApps"
	CommandManageExcludedDomains LaunchCommand = "manageExcludedDomains"
	CommandShowFAQ               LaunchCommand = "showFAQ"
	CommandShareFeedback         LaunchCommand = "shareFeedback"
)

var launchCommands = map[LaunchCommand]struct{}{
	CommandStartVPN:              {},
	CommandStopVPN:               {},
	CommandJustOpen:              {},
	CommandShowSettings:          {},
	CommandManageExcludedApps:    {},
	CommandManageExcludedDomains: {},
	CommandShowFAQ:               {},
	CommandShareFeedback:         {},
}

// Valid reports whether c is a known command.
func (c LaunchCommand) Valid() bool {
	_, ok := launchCommands[c]
	return ok
}
