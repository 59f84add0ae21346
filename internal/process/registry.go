// Package process starts and tracks the long-running child processes that
// rnandroid launches (emulator, packager, build/run).
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry owns every child it starts. Children share the registry's stdout
// and stderr writers; writers that are not files are serialized so
// concurrent children never interleave inside a single Write.
type Registry struct {
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger

	mu     sync.Mutex
	procs  []*Process
	nextID int
}

// NewRegistry creates a registry forwarding child output to stdout and stderr.
func NewRegistry(stdout, stderr io.Writer, log zerolog.Logger) *Registry {
	out := guard(stdout)
	errOut := out
	if !sameWriter(stdout, stderr) {
		errOut = guard(stderr)
	}
	return &Registry{
		stdout: out,
		stderr: errOut,
		log:    log,
	}
}

// lockedWriter serializes writes from the copy goroutines os/exec starts for
// each child whose output is not an *os.File.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func guard(w io.Writer) io.Writer {
	if w == nil {
		return nil
	}
	if _, ok := w.(*os.File); ok {
		return w
	}
	return &lockedWriter{w: w}
}

func sameWriter(a, b io.Writer) bool {
	if a == nil || b == nil || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// Start spawns the process described by spec and returns its handle without
// waiting for it to become ready.
func (r *Registry) Start(spec Spec) (*Process, error) {
	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = os.Environ()
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Name, err)
	}

	r.mu.Lock()
	id := fmt.Sprintf("p%d", r.nextID)
	r.nextID++
	p := &Process{
		ID:        id,
		Name:      spec.Name,
		Command:   spec.CommandLine(),
		StartTime: time.Now(),
		cmd:       cmd,
		done:      make(chan struct{}),
		status:    StatusRunning,
	}
	r.procs = append(r.procs, p)
	r.mu.Unlock()

	r.log.Debug().
		Str("id", id).
		Str("name", spec.Name).
		Str("command", p.Command).
		Int("pid", cmd.Process.Pid).
		Msg("process started")

	go func() {
		p.wait()
		r.log.Debug().
			Str("id", id).
			Str("name", spec.Name).
			Stringer("status", p.Status()).
			Dur("duration", p.Duration()).
			AnErr("error", p.Err()).
			Msg("process exited")
	}()

	return p, nil
}

// Processes returns a snapshot of all registered processes in start order.
func (r *Registry) Processes() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Process, len(r.procs))
	copy(out, r.procs)
	return out
}

// Running returns the number of processes that have not exited yet.
func (r *Registry) Running() int {
	n := 0
	for _, p := range r.Processes() {
		if p.Status() == StatusRunning {
			n++
		}
	}
	return n
}

// Wait blocks until every registered process has exited or ctx is done.
func (r *Registry) Wait(ctx context.Context) error {
	for _, p := range r.Processes() {
		select {
		case <-p.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// KillAll terminates every running process.
func (r *Registry) KillAll() {
	r.log.Debug().Int("running", r.Running()).Msg("stopping child processes")
	for _, p := range r.Processes() {
		if p.Status() != StatusRunning {
			continue
		}
		if err := p.Kill(); err != nil {
			r.log.Warn().Err(err).Str("name", p.Name).Msg("failed to kill process")
			continue
		}
		r.log.Debug().Str("name", p.Name).Int("pid", p.Pid()).Msg("process killed")
	}
}
