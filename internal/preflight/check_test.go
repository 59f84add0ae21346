package preflight

import (
	"errors"
	"testing"
)

func fakeLookPath(found map[string]string) func(string) (string, error) {
	return func(file string) (string, error) {
		if p, ok := found[file]; ok {
			return p, nil
		}
		return "", errors.New("executable file not found in $PATH")
	}
}

func TestRunAllPresent(t *testing.T) {
	c := NewChecker(Tools("react-native", "emulator", "adb"))
	c.LookPath = fakeLookPath(map[string]string{
		"react-native": "/usr/local/bin/react-native",
		"emulator":     "/sdk/emulator/emulator",
		"adb":          "/sdk/platform-tools/adb",
	})

	r := c.Run()
	if r.HasErrors || r.HasWarnings {
		t.Fatalf("HasErrors = %v, HasWarnings = %v, want both false", r.HasErrors, r.HasWarnings)
	}
	if _, missing := r.FirstMissing(); missing {
		t.Error("FirstMissing() reported a missing tool")
	}
	if got := r.Path("emulator"); got != "/sdk/emulator/emulator" {
		t.Errorf("Path(emulator) = %q", got)
	}
	if got := r.Summary(); got != "3 checks passed" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRunMissingRequired(t *testing.T) {
	c := NewChecker(Tools("react-native", "emulator", "adb"))
	c.LookPath = fakeLookPath(map[string]string{
		"react-native": "/usr/local/bin/react-native",
		"adb":          "/sdk/platform-tools/adb",
	})

	r := c.Run()
	if !r.HasErrors {
		t.Fatal("HasErrors = false, want true")
	}
	missing, ok := r.FirstMissing()
	if !ok {
		t.Fatal("FirstMissing() found nothing")
	}
	if missing.Command != "emulator" {
		t.Errorf("FirstMissing().Command = %q, want emulator", missing.Command)
	}
	if r.Path("emulator") != "" {
		t.Errorf("Path(emulator) = %q, want empty", r.Path("emulator"))
	}
	if got := r.Summary(); got != "1 errors, 0 warnings" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestRunOptionalMissingIsWarning(t *testing.T) {
	c := &Checker{
		Tools:    []RequiredTool{{Name: "Gradle", Command: "gradle"}},
		LookPath: fakeLookPath(nil),
	}

	r := c.Run()
	if r.HasErrors {
		t.Error("optional tool produced an error")
	}
	if !r.HasWarnings {
		t.Error("HasWarnings = false, want true")
	}
}

func TestRunVersionProbe(t *testing.T) {
	c := NewChecker(Tools("react-native", "emulator", "adb"))
	c.LookPath = fakeLookPath(map[string]string{
		"react-native": "/bin/react-native",
		"emulator":     "/bin/emulator",
		"adb":          "/bin/adb",
	})
	c.Version = func(path, command string) string {
		if command == "adb" {
			return "1.0.41"
		}
		return ""
	}

	r := c.Run()
	for _, check := range r.Checks {
		want := "OK"
		if check.Command == "adb" {
			want = "1.0.41"
		}
		if check.Message != want {
			t.Errorf("%s Message = %q, want %q", check.Command, check.Message, want)
		}
	}
}

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Android Debug Bridge version 1.0.41\nVersion 34.0.5\n", "1.0.41"},
		{"v0.72.4\n", "0.72.4"},
		{"react-native-cli: 2.0.1\nreact-native: 0.72.4", "2.0.1"},
		{"  \n", ""},
	}
	for _, tt := range tests {
		if got := cleanVersion(tt.in); got != tt.want {
			t.Errorf("cleanVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
