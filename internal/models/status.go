package models

import "strings"

// Status is the lifecycle state of a managed server as reported by the
// external state store. The set is closed from the panel's perspective;
// unknown tags are carried through untouched.
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusOffline  Status = "offline"
)

// IsTransitioning reports whether the server is between stable states.
func (s Status) IsTransitioning() bool {
	return s == StatusStarting || s == StatusStopping
}

// Title returns the status word with its first letter capitalized, e.g.
// "Starting", for display in place of a numeric uptime.
func (s Status) Title() string {
	str := string(s)
	if str == "" {
		return ""
	}
	return strings.ToUpper(str[:1]) + str[1:]
}
