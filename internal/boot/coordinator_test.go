package boot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/icarus-itcs/rnandroid/internal/device"
	"github.com/icarus-itcs/rnandroid/internal/process"
)

type fakeSpawner struct {
	specs []process.Spec
	err   error
}

func (f *fakeSpawner) Start(spec process.Spec) (*process.Process, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return &process.Process{Name: spec.Name, Command: spec.CommandLine()}, nil
}

// fakeBridge reports ready starting at call readyAt (1-based); 0 never.
type fakeBridge struct {
	readyAt int
	err     error
	calls   int
}

func (f *fakeBridge) EmulatorReady(context.Context) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.readyAt > 0 && f.calls >= f.readyAt, nil
}

// stuckBridge never answers until its context ends, like a wedged adb daemon.
type stuckBridge struct{}

func (stuckBridge) EmulatorReady(ctx context.Context) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func newTestCoordinator(s Spawner, b Bridge, timeout, interval time.Duration) *Coordinator {
	c := NewCoordinator(s, b, Options{EmulatorPath: "/sdk/emulator/emulator"}, zerolog.Nop())
	c.opts.Timeout = timeout
	c.opts.PollInterval = interval
	return c
}

func TestBootLaunchesEmulatorInItsDirectory(t *testing.T) {
	sp := &fakeSpawner{}
	c := newTestCoordinator(sp, &fakeBridge{readyAt: 1}, time.Second, time.Millisecond)

	s, err := c.Boot(context.Background(), device.Profile("Pixel_3_API_29"))
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if len(sp.specs) != 1 {
		t.Fatalf("spawned %d processes, want 1", len(sp.specs))
	}
	spec := sp.specs[0]
	if spec.Path != "/sdk/emulator/emulator" {
		t.Errorf("Path = %q", spec.Path)
	}
	if spec.Dir != "/sdk/emulator" {
		t.Errorf("Dir = %q, want /sdk/emulator", spec.Dir)
	}
	if len(spec.Args) != 1 || spec.Args[0] != "@Pixel_3_API_29" {
		t.Errorf("Args = %v, want [@Pixel_3_API_29]", spec.Args)
	}
	if s.Emulator == nil {
		t.Error("session has no emulator handle")
	}
}

func TestBootReadyBeforeDeadline(t *testing.T) {
	b := &fakeBridge{readyAt: 3}
	c := newTestCoordinator(&fakeSpawner{}, b, 5*time.Second, time.Millisecond)

	s, err := c.Boot(context.Background(), "Nexus_5")
	if err != nil {
		t.Fatalf("Boot() error = %v", err)
	}
	if s.State != StateReady {
		t.Errorf("State = %v, want %v", s.State, StateReady)
	}
	if s.Polls != 3 || b.calls != 3 {
		t.Errorf("Polls = %d, bridge calls = %d, want 3", s.Polls, b.calls)
	}
}

func TestBootTimesOut(t *testing.T) {
	b := &fakeBridge{}
	c := newTestCoordinator(&fakeSpawner{}, b, 50*time.Millisecond, 5*time.Millisecond)

	start := time.Now()
	s, err := c.Boot(context.Background(), "Nexus_5")
	if !errors.Is(err, ErrNoDeviceRunning) {
		t.Fatalf("Boot() error = %v, want %v", err, ErrNoDeviceRunning)
	}
	if s.State != StateTimedOut {
		t.Errorf("State = %v, want %v", s.State, StateTimedOut)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Boot() returned after %v, before the deadline", elapsed)
	}
	if b.calls < 2 {
		t.Errorf("bridge calls = %d, want several polls", b.calls)
	}
}

func TestBootDeadlineBoundsStuckBridge(t *testing.T) {
	c := newTestCoordinator(&fakeSpawner{}, stuckBridge{}, 50*time.Millisecond, 5*time.Millisecond)

	type result struct {
		s   *Session
		err error
	}
	done := make(chan result, 1)
	go func() {
		s, err := c.Boot(context.Background(), "Nexus_5")
		done <- result{s, err}
	}()

	select {
	case r := <-done:
		if !errors.Is(r.err, ErrNoDeviceRunning) {
			t.Fatalf("Boot() error = %v, want %v", r.err, ErrNoDeviceRunning)
		}
		if r.s.State != StateTimedOut {
			t.Errorf("State = %v, want %v", r.s.State, StateTimedOut)
		}
		if r.s.Polls != 1 {
			t.Errorf("Polls = %d, want 1", r.s.Polls)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Boot() still blocked long after the deadline")
	}
}

func TestBootCancelledDuringStuckQuery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestCoordinator(&fakeSpawner{}, stuckBridge{}, time.Minute, time.Millisecond)

	time.AfterFunc(20*time.Millisecond, cancel)
	s, err := c.Boot(ctx, "Nexus_5")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Boot() error = %v, want %v", err, context.Canceled)
	}
	if s.State != StateFailed {
		t.Errorf("State = %v, want %v", s.State, StateFailed)
	}
}

func TestBootMatchOnExpiredDeadlineWins(t *testing.T) {
	c := newTestCoordinator(&fakeSpawner{}, &fakeBridge{readyAt: 1}, time.Nanosecond, time.Millisecond)

	s, err := c.Boot(context.Background(), "Nexus_5")
	if err != nil {
		t.Fatalf("Boot() error = %v, want nil", err)
	}
	if s.State != StateReady {
		t.Errorf("State = %v, want %v", s.State, StateReady)
	}
}

func TestBootBridgeErrorsCountAsNotReady(t *testing.T) {
	b := &fakeBridge{err: errors.New("adb: no daemon")}
	c := newTestCoordinator(&fakeSpawner{}, b, 20*time.Millisecond, 2*time.Millisecond)

	_, err := c.Boot(context.Background(), "Nexus_5")
	if !errors.Is(err, ErrNoDeviceRunning) {
		t.Errorf("Boot() error = %v, want %v", err, ErrNoDeviceRunning)
	}
}

func TestBootSpawnFailure(t *testing.T) {
	boom := errors.New("exec: permission denied")
	b := &fakeBridge{readyAt: 1}
	c := newTestCoordinator(&fakeSpawner{err: boom}, b, time.Second, time.Millisecond)

	s, err := c.Boot(context.Background(), "Nexus_5")
	if !errors.Is(err, boom) {
		t.Fatalf("Boot() error = %v, want wrapping %v", err, boom)
	}
	if s.State != StateFailed {
		t.Errorf("State = %v, want %v", s.State, StateFailed)
	}
	if b.calls != 0 {
		t.Errorf("bridge polled %d times after spawn failure", b.calls)
	}
}

func TestBootCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestCoordinator(&fakeSpawner{}, &fakeBridge{}, time.Minute, time.Millisecond)

	s, err := c.Boot(ctx, "Nexus_5")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Boot() error = %v, want %v", err, context.Canceled)
	}
	if s.State != StateFailed {
		t.Errorf("State = %v, want %v", s.State, StateFailed)
	}
}

func TestNewCoordinatorDefaults(t *testing.T) {
	c := NewCoordinator(&fakeSpawner{}, &fakeBridge{}, Options{}, zerolog.Nop())
	if c.opts.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.opts.Timeout, DefaultTimeout)
	}
	if c.opts.PollInterval != DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", c.opts.PollInterval, DefaultPollInterval)
	}
}
