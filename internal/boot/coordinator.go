// Package boot launches an Android virtual device and waits until the device
// bridge reports it as booted.
package boot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/icarus-itcs/rnandroid/internal/device"
	"github.com/icarus-itcs/rnandroid/internal/process"
)

// ErrNoDeviceRunning is returned when no booted emulator shows up before the
// deadline.
var ErrNoDeviceRunning = errors.New("no device running")

const (
	DefaultTimeout      = 60 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
)

// State is the lifecycle state of a boot session
type State int

const (
	StateIdle State = iota
	StateLaunching
	StatePolling
	StateReady
	StateTimedOut
	StateFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLaunching:
		return "launching"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateTimedOut:
		return "timed out"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Spawner starts child processes.
type Spawner interface {
	Start(spec process.Spec) (*process.Process, error)
}

// Bridge answers whether a booted emulator is attached.
type Bridge interface {
	EmulatorReady(ctx context.Context) (bool, error)
}

// Options configures a Coordinator.
type Options struct {
	// EmulatorPath is the resolved emulator binary. The emulator runs in
	// this binary's directory.
	EmulatorPath string
	Timeout      time.Duration
	PollInterval time.Duration
}

// Session ties a selected profile to the emulator process launched for it.
type Session struct {
	Profile   device.Profile
	Emulator  *process.Process
	State     State
	StartTime time.Time
	EndTime   time.Time
	Polls     int
}

// Elapsed returns the time spent between launch and the terminal state.
func (s *Session) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Coordinator drives a boot session from launch to readiness.
type Coordinator struct {
	spawner Spawner
	bridge  Bridge
	opts    Options
	log     zerolog.Logger
}

// NewCoordinator creates a coordinator. Zero durations in opts fall back to
// the defaults.
func NewCoordinator(spawner Spawner, bridge Bridge, opts Options, log zerolog.Logger) *Coordinator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Coordinator{
		spawner: spawner,
		bridge:  bridge,
		opts:    opts,
		log:     log,
	}
}

// Boot launches the emulator for profile and polls the bridge until a booted
// emulator is reported or the timeout elapses. The returned session is
// non-nil even on error so callers can clean up the emulator handle.
func (c *Coordinator) Boot(ctx context.Context, profile device.Profile) (*Session, error) {
	s := &Session{Profile: profile, State: StateLaunching, StartTime: time.Now()}

	emu, err := c.spawner.Start(process.Spec{
		Name: "emulator",
		Path: c.opts.EmulatorPath,
		Args: []string{profile.Arg()},
		Dir:  filepath.Dir(c.opts.EmulatorPath),
	})
	if err != nil {
		c.finish(s, StateFailed)
		return s, fmt.Errorf("failed to launch emulator for %s: %w", profile, err)
	}
	s.Emulator = emu
	s.State = StatePolling

	// Every bridge query shares the boot deadline, so a hung adb cannot
	// outlive the timeout.
	dctx, cancel := context.WithDeadline(ctx, s.StartTime.Add(c.opts.Timeout))
	defer cancel()

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		s.Polls++
		ready, err := c.bridge.EmulatorReady(dctx)
		if err != nil {
			c.log.Debug().Err(err).Int("poll", s.Polls).Msg("device bridge query failed")
		}

		// A match wins over an expired deadline on the same tick.
		if ready {
			c.finish(s, StateReady)
			return s, nil
		}
		if dctx.Err() != nil {
			return s, c.expire(ctx, s)
		}

		select {
		case <-dctx.Done():
			return s, c.expire(ctx, s)
		case <-ticker.C:
		}
	}
}

// expire ends a session whose deadline context is done, telling caller
// cancellation apart from the boot timeout.
func (c *Coordinator) expire(ctx context.Context, s *Session) error {
	if err := ctx.Err(); err != nil {
		c.finish(s, StateFailed)
		return err
	}
	c.finish(s, StateTimedOut)
	return fmt.Errorf("%w after %s", ErrNoDeviceRunning, c.opts.Timeout)
}

func (c *Coordinator) finish(s *Session, state State) {
	s.State = state
	s.EndTime = time.Now()
	c.log.Debug().
		Str("profile", s.Profile.String()).
		Stringer("state", state).
		Int("polls", s.Polls).
		Dur("elapsed", s.Elapsed()).
		Msg("boot session finished")
}
