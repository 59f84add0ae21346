// Package launch runs the full development flow: dependency check, device
// selection, emulator boot alongside the packager, then build and run.
package launch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/icarus-itcs/rnandroid/internal/boot"
	"github.com/icarus-itcs/rnandroid/internal/config"
	"github.com/icarus-itcs/rnandroid/internal/device"
	"github.com/icarus-itcs/rnandroid/internal/preflight"
	"github.com/icarus-itcs/rnandroid/internal/process"
	"github.com/icarus-itcs/rnandroid/internal/ui"
)

// ExitCodeInterrupted is the exit code used when the user interrupts the flow.
const ExitCodeInterrupted = 130

// ExitError carries a process exit code for failures that were already
// reported to the user, or that need no report.
type ExitError struct {
	Code   int
	Reason string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d: %s", e.Code, e.Reason)
}

// Preflight checks the required tools.
type Preflight interface {
	Run() *preflight.Results
}

// DeviceLister lists the available virtual device profiles.
type DeviceLister interface {
	ListProfiles(ctx context.Context) ([]device.Profile, error)
}

// Selector asks the user to choose one of choices.
type Selector interface {
	Select(ctx context.Context, message string, choices []string) (string, error)
}

// Booter boots a virtual device and waits until it is ready.
type Booter interface {
	Boot(ctx context.Context, profile device.Profile) (*boot.Session, error)
}

// Children is the set of spawned processes the launcher owns.
type Children interface {
	boot.Spawner
	Wait(ctx context.Context) error
	KillAll()
}

// NewBooter builds the boot coordinator once the emulator path is known.
type NewBooter func(emulatorPath string) Booter

// Launcher wires the flow's collaborators together.
type Launcher struct {
	Config    *config.Config
	Preflight Preflight
	Lister    DeviceLister
	Selector  Selector
	NewBooter NewBooter
	Children  Children
	Printer   *ui.Printer
	Log       zerolog.Logger
}

// Result describes a completed launch.
type Result struct {
	Session  *boot.Session
	Packager *process.Process
	App      *process.Process
}

// Run executes the flow up to starting the build/run process. It does not
// wait for the children; see Wait.
func (l *Launcher) Run(ctx context.Context) (*Result, error) {
	results := l.Preflight.Run()
	if missing, ok := results.FirstMissing(); ok {
		l.Printer.Errorf("rnandroid requires %s.", missing.Command)
		l.Printer.DocsHint(l.Config.DocsURL)
		return nil, &ExitError{Code: 1, Reason: "missing " + missing.Command}
	}

	profiles, err := l.Lister.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		l.Printer.Errorf("Please create a virtual device")
		l.Printer.DocsHint(l.Config.DocsURL)
		return nil, &ExitError{Code: 1, Reason: "no virtual devices"}
	}

	choice, err := l.Selector.Select(ctx, "Which device would you like to use?", device.Names(profiles))
	if err != nil {
		return nil, err
	}
	profile := device.Profile(choice)

	emulatorPath := results.Path(l.Config.Tools.Emulator)
	if emulatorPath == "" {
		emulatorPath = l.Config.Tools.Emulator
	}
	booter := l.NewBooter(emulatorPath)

	res := &Result{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Printer.Infof("Starting emulator for device %s", profile)
		s, err := booter.Boot(gctx, profile)
		res.Session = s
		if err != nil {
			return err
		}
		l.Printer.Successf("Device is running")
		return nil
	})
	g.Go(func() error {
		p, err := l.startPackager()
		res.Packager = p
		return err
	})
	if err := g.Wait(); err != nil {
		l.cleanupOnFailure()
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			l.Log.Debug().Msg("interrupted before the device was ready")
			return res, &ExitError{Code: ExitCodeInterrupted, Reason: "interrupted"}
		}
		return res, err
	}

	app, err := l.startApp()
	if err != nil {
		l.cleanupOnFailure()
		return res, err
	}
	res.App = app

	return res, nil
}

// Wait blocks until every child exits or ctx is cancelled. On cancellation
// the children are killed when the cleanup policy asks for it.
func (l *Launcher) Wait(ctx context.Context) error {
	err := l.Children.Wait(ctx)
	if errors.Is(err, context.Canceled) {
		if l.Config.Cleanup.KillOnInterrupt() {
			l.Log.Debug().Msg("interrupted, stopping child processes")
			l.Children.KillAll()
		}
		return nil
	}
	return err
}

func (l *Launcher) startPackager() (*process.Process, error) {
	l.Printer.Infof("Starting react-native package server")
	return l.Children.Start(process.Spec{
		Name: "packager",
		Path: l.Config.Tools.ReactNative,
		Args: []string{"start"},
	})
}

func (l *Launcher) startApp() (*process.Process, error) {
	l.Printer.Infof("Starting react-native")
	return l.Children.Start(process.Spec{
		Name: "run-android",
		Path: l.Config.Tools.ReactNative,
		Args: []string{"run-android"},
	})
}

func (l *Launcher) cleanupOnFailure() {
	if !l.Config.Cleanup.KillOnFailure() {
		l.Log.Debug().Str("policy", l.Config.Cleanup.Policy).Msg("leaving child processes running")
		return
	}
	l.Log.Debug().Str("policy", l.Config.Cleanup.Policy).Msg("stopping child processes")
	l.Children.KillAll()
}
