package process

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Status represents the state of a process
type Status int

const (
	StatusRunning Status = iota
	StatusExited
	StatusFailed
	StatusKilled
)

// String returns the status name
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusExited:
		return "exited"
	case StatusFailed:
		return "failed"
	case StatusKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Spec describes a child process to start.
type Spec struct {
	Name string
	Path string
	Args []string
	Dir  string
}

// CommandLine returns the spec as a shell-like string for display.
func (s Spec) CommandLine() string {
	parts := append([]string{s.Path}, s.Args...)
	return strings.Join(parts, " ")
}

// Process is a handle to a child started by a Registry. Its output streams
// are forwarded to the registry's writers; the handle only tracks lifecycle.
type Process struct {
	ID        string
	Name      string
	Command   string
	StartTime time.Time

	cmd  *exec.Cmd
	done chan struct{}

	mu      sync.Mutex
	status  Status
	endTime time.Time
	err     error
	killed  bool
}

// Done returns a channel that is closed once the process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Status returns the current status
func (p *Process) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the wait error of an exited process.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Duration returns how long the process has been running or ran
func (p *Process) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == StatusRunning {
		return time.Since(p.StartTime)
	}
	return p.endTime.Sub(p.StartTime)
}

// Kill terminates the process if it is still running.
func (p *Process) Kill() error {
	p.mu.Lock()
	if p.status != StatusRunning {
		p.mu.Unlock()
		return nil
	}
	p.killed = true
	p.mu.Unlock()
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.endTime = time.Now()
	p.err = err
	switch {
	case p.killed:
		p.status = StatusKilled
	case err != nil:
		p.status = StatusFailed
	default:
		p.status = StatusExited
	}
	p.mu.Unlock()

	close(p.done)
}
