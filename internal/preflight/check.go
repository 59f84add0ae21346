package preflight

import (
	"fmt"
	"os/exec"
	"strings"
)

// CheckResult represents the result of a single check
type CheckResult struct {
	Name    string
	Command string
	Status  Status
	Message string
	Path    string
}

// Status represents the status of a check
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

// Results contains all preflight check results
type Results struct {
	Checks      []CheckResult
	HasErrors   bool
	HasWarnings bool
}

// RequiredTool defines a tool to check for
type RequiredTool struct {
	Name     string
	Command  string
	Required bool
}

// Tools returns the executables rnandroid cannot run without, in the order
// they are checked.
func Tools(reactNative, emulator, adb string) []RequiredTool {
	return []RequiredTool{
		{Name: "React Native CLI", Command: reactNative, Required: true},
		{Name: "Android Emulator", Command: emulator, Required: true},
		{Name: "Android ADB", Command: adb, Required: true},
	}
}

// Checker resolves tools on the execution path.
type Checker struct {
	Tools []RequiredTool

	// LookPath resolves a command; defaults to exec.LookPath.
	LookPath func(file string) (string, error)
	// Version probes a resolved tool for its version; nil skips probing.
	Version func(path, command string) string
}

// NewChecker returns a checker for tools using exec.LookPath and no version
// probing.
func NewChecker(tools []RequiredTool) *Checker {
	return &Checker{Tools: tools, LookPath: exec.LookPath}
}

// Run executes all preflight checks
func (c *Checker) Run() *Results {
	results := &Results{
		Checks: make([]CheckResult, 0, len(c.Tools)),
	}

	for _, tool := range c.Tools {
		result := c.checkTool(tool)
		results.Checks = append(results.Checks, result)

		switch result.Status {
		case StatusError:
			results.HasErrors = true
		case StatusWarning:
			results.HasWarnings = true
		}
	}

	return results
}

func (c *Checker) checkTool(tool RequiredTool) CheckResult {
	result := CheckResult{
		Name:    tool.Name,
		Command: tool.Command,
	}

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	path, err := lookPath(tool.Command)
	if err != nil {
		if tool.Required {
			result.Status = StatusError
			result.Message = "Not found - required"
		} else {
			result.Status = StatusWarning
			result.Message = "Not found - optional"
		}
		return result
	}

	result.Path = path
	result.Status = StatusOK
	result.Message = "OK"

	if c.Version != nil {
		if version := c.Version(path, tool.Command); version != "" {
			result.Message = version
		}
	}

	return result
}

// FirstMissing returns the first required check that failed.
func (r *Results) FirstMissing() (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Status == StatusError {
			return c, true
		}
	}
	return CheckResult{}, false
}

// Path returns the resolved path of command, or "" if it was not found.
func (r *Results) Path(command string) string {
	for _, c := range r.Checks {
		if c.Command == command {
			return c.Path
		}
	}
	return ""
}

// ToolVersion runs the tool's version command and returns the first line of
// its output.
func ToolVersion(path, command string) string {
	var versionArgs []string

	switch command {
	case "adb":
		versionArgs = []string{"version"}
	case "emulator":
		versionArgs = []string{"-version"}
	default:
		versionArgs = []string{"--version"}
	}

	out, err := exec.Command(path, versionArgs...).Output()
	if err != nil {
		return ""
	}
	return cleanVersion(string(out))
}

func cleanVersion(out string) string {
	version := strings.TrimSpace(out)
	// Clean up version string - take first line only
	if idx := strings.Index(version, "\n"); idx != -1 {
		version = version[:idx]
	}
	version = strings.TrimSpace(version)
	// Remove common prefixes
	version = strings.TrimPrefix(version, "Android Debug Bridge version ")
	version = strings.TrimPrefix(version, "Android emulator version ")
	version = strings.TrimPrefix(version, "react-native-cli: ")
	version = strings.TrimPrefix(version, "v")

	if len(version) > 30 {
		version = version[:30] + "..."
	}

	return version
}

// Summary returns a short summary of the results
func (r *Results) Summary() string {
	ok := 0
	warn := 0
	fail := 0

	for _, c := range r.Checks {
		switch c.Status {
		case StatusOK:
			ok++
		case StatusWarning:
			warn++
		case StatusError:
			fail++
		}
	}

	if fail > 0 {
		return fmt.Sprintf("%d errors, %d warnings", fail, warn)
	}
	if warn > 0 {
		return fmt.Sprintf("%d warnings", warn)
	}
	return fmt.Sprintf("%d checks passed", ok)
}
