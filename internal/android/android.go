// Package android wraps the Android SDK command line tools used by rnandroid:
// the virtual-device launcher (emulator) and the device bridge (adb).
package android

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/icarus-itcs/rnandroid/internal/device"
)

// readyPattern matches an attached emulator that finished booting.
// Transitional states such as "offline" or "bootloader" do not match.
var readyPattern = regexp.MustCompile(`emulator-\d+\s+device\b`)

// Runner runs a command to completion and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Output implements Runner.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// SDK invokes the emulator and adb binaries.
type SDK struct {
	Emulator string
	ADB      string
	Runner   Runner
}

// New returns an SDK that runs the given binaries with os/exec.
func New(emulator, adb string) *SDK {
	return &SDK{Emulator: emulator, ADB: adb, Runner: ExecRunner{}}
}

// ListProfiles returns the virtual device profiles known to the emulator,
// in the order the tool prints them.
func (s *SDK) ListProfiles(ctx context.Context) ([]device.Profile, error) {
	out, err := s.Runner.Output(ctx, s.Emulator, "-list-avds")
	if err != nil {
		return nil, fmt.Errorf("failed to list virtual devices: %w", err)
	}
	return ParseProfiles(string(out)), nil
}

// Devices returns the devices currently attached to the bridge.
func (s *SDK) Devices(ctx context.Context) ([]device.Device, error) {
	out, err := s.devicesOutput(ctx)
	if err != nil {
		return nil, err
	}
	return ParseDevices(out), nil
}

// EmulatorReady queries the bridge once and reports whether a booted
// emulator is attached.
func (s *SDK) EmulatorReady(ctx context.Context) (bool, error) {
	out, err := s.devicesOutput(ctx)
	if err != nil {
		return false, err
	}
	return IsEmulatorReady(out), nil
}

func (s *SDK) devicesOutput(ctx context.Context) (string, error) {
	out, err := s.Runner.Output(ctx, s.ADB, "devices")
	if err != nil {
		return "", fmt.Errorf("failed to query adb devices: %w", err)
	}
	return string(out), nil
}

// ParseProfiles splits `emulator -list-avds` output into trimmed, non-empty
// profile names. Duplicates are kept.
func ParseProfiles(output string) []device.Profile {
	var profiles []device.Profile
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		profiles = append(profiles, device.Profile(name))
	}
	return profiles
}

// IsEmulatorReady reports whether `adb devices` output lists a booted
// emulator.
func IsEmulatorReady(output string) bool {
	return readyPattern.MatchString(output)
}

// ParseDevices parses the rows of `adb devices` output. The header line and
// daemon status lines are skipped.
func ParseDevices(output string) []device.Device {
	var devices []device.Device
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, device.Device{
			Serial:     fields[0],
			State:      device.ParseState(fields[1]),
			IsEmulator: strings.HasPrefix(fields[0], "emulator-"),
		})
	}
	return devices
}
