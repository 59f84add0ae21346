package device

import "strings"

// Profile names an Android virtual device image as reported by
// `emulator -list-avds`.
type Profile string

// String returns the profile name
func (p Profile) String() string {
	return string(p)
}

// Arg returns the launcher argument selecting this profile.
func (p Profile) Arg() string {
	return "@" + string(p)
}

// Names converts profiles to their plain names, preserving order.
func Names(profiles []Profile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = string(p)
	}
	return names
}

// State is the connection state column of `adb devices`.
type State string

const (
	StateDevice       State = "device"
	StateOffline      State = "offline"
	StateBootloader   State = "bootloader"
	StateUnauthorized State = "unauthorized"
	StateUnknown      State = "unknown"
)

// Device represents a device attached to the device bridge
type Device struct {
	Serial     string
	State      State
	IsEmulator bool
}

// Online reports whether the bridge considers the device fully usable.
func (d Device) Online() bool {
	return d.State == StateDevice
}

// ParseState maps an adb state word to a State.
func ParseState(s string) State {
	switch st := State(strings.TrimSpace(s)); st {
	case StateDevice, StateOffline, StateBootloader, StateUnauthorized:
		return st
	default:
		return StateUnknown
	}
}
