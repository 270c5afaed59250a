// Package supervisor manages server subprocesses for tests and local
// development. A Supervisor owns exactly one subprocess and the TCP port it
// binds. Starting evicts any stale listener from the port first, then waits
// for the new process to become connectable. Stopping escalates from SIGTERM
// through SIGKILL and re-evicts the port so no orphan survives.
//
// Every Supervisor registers with a process-wide tracker; CleanupAll stops
// all outstanding supervisors and is meant to run from a top-level defer or
// signal handler.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/errors"
)

// State describes where a Supervisor is in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	defaultProbeInterval  = 500 * time.Millisecond
	defaultStartupTimeout = 30 * time.Second
	defaultGracePeriod    = 2 * time.Second
)

// Options configures a Supervisor.
type Options struct {
	// Command is the server executable to spawn.
	Command string

	// Args are passed to the command verbatim.
	Args []string

	// Env entries are appended to the subprocess environment.
	Env []string

	// Host and Port form the address probed for readiness and evicted on
	// start and stop. Host defaults to 127.0.0.1.
	Host string
	Port int

	// ProbeInterval is the delay between readiness probes. Defaults to 500ms.
	ProbeInterval time.Duration

	// StartupTimeout bounds the readiness wait. Defaults to 30s.
	StartupTimeout time.Duration

	// GracePeriod is how long Stop waits after SIGTERM before escalating.
	// Defaults to 2s.
	GracePeriod time.Duration

	// Logger receives supervisor lifecycle events. A nil logger discards.
	Logger *slog.Logger
}

// Supervisor runs and reaps one server subprocess bound to one port.
type Supervisor struct {
	opts Options
	log  *slog.Logger

	mu    sync.Mutex
	state State
	cmd   *exec.Cmd
	done  chan error
}

// New builds a Supervisor and registers it with the process-wide tracker.
func New(opts Options) *Supervisor {
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.ProbeInterval <= 0 {
		opts.ProbeInterval = defaultProbeInterval
	}
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = defaultStartupTimeout
	}
	if opts.GracePeriod <= 0 {
		opts.GracePeriod = defaultGracePeriod
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Supervisor{
		opts: opts,
		log:  log.With("component", "supervisor"),
	}
	track(s)
	return s
}

// Addr returns the host:port the supervised server is expected to bind.
func (s *Supervisor) Addr() string {
	return fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start evicts any stale listener from the port, spawns the server process,
// and blocks until the port accepts a TCP connection. A no-op when already
// running. Returns a StartupTimeoutError if the port never becomes
// connectable within the readiness window.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStarting
	s.mu.Unlock()

	addr := s.Addr()

	if err := evictPortHolder(uint32(s.opts.Port), s.opts.GracePeriod); err != nil {
		s.log.Warn("port eviction failed", "addr", addr, "error", err)
	}

	cmd := exec.Command(s.opts.Command, s.opts.Args...)
	cmd.Env = append(cmd.Environ(), s.opts.Env...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Start(); err != nil {
		s.setIdle()
		return fmt.Errorf("spawning %s: %w", s.opts.Command, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	s.mu.Lock()
	s.cmd = cmd
	s.done = done
	s.mu.Unlock()

	s.log.Info("server process spawned", "pid", cmd.Process.Pid, "addr", addr)

	if err := s.awaitReady(ctx, addr, done); err != nil {
		stopErr := s.Stop()
		if stopErr != nil {
			s.log.Warn("cleanup after failed start", "error", stopErr)
		}
		return err
	}

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()

	s.log.Info("server ready", "addr", addr)
	return nil
}

// awaitReady polls the port until it connects, the process exits, the
// timeout elapses, or the context is cancelled.
func (s *Supervisor) awaitReady(ctx context.Context, addr string, done <-chan error) error {
	deadline := time.Now().Add(s.opts.StartupTimeout)
	ticker := time.NewTicker(s.opts.ProbeInterval)
	defer ticker.Stop()

	for {
		if probePort(addr, s.opts.ProbeInterval) {
			return nil
		}
		if time.Now().After(deadline) {
			return &errors.StartupTimeoutError{Addr: addr, Timeout: s.opts.StartupTimeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return fmt.Errorf("server process exited before %s became ready: %w", addr, err)
		case <-ticker.C:
		}
	}
}

// Stop terminates the supervised process and reclaims the port. Escalation
// order: SIGTERM, then SIGKILL after the grace period, then eviction of any
// process still listening on the port. Safe to call repeatedly and safe to
// call when Start never completed.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	done := s.done
	s.cmd = nil
	s.done = nil
	s.state = StateStopping
	s.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		s.terminate(cmd, done)
	}

	// The port must end up free even if the subprocess forked helpers or a
	// stranger grabbed the port meanwhile.
	if err := evictPortHolder(uint32(s.opts.Port), s.opts.GracePeriod); err != nil {
		s.log.Warn("post-stop port eviction failed", "addr", s.Addr(), "error", err)
	}

	s.setIdle()
	return nil
}

// terminate walks the signal escalation ladder for one process.
func (s *Supervisor) terminate(cmd *exec.Cmd, done <-chan error) {
	pid := cmd.Process.Pid

	if err := cmd.Process.Signal(syscall.SIGTERM); err == nil {
		select {
		case <-done:
			s.log.Info("server process exited on SIGTERM", "pid", pid)
			return
		case <-time.After(s.opts.GracePeriod):
		}
	}

	s.log.Warn("escalating to SIGKILL", "pid", pid)
	if err := cmd.Process.Kill(); err != nil {
		// Already gone, or beyond our reach. The syscall path below is the
		// last word before port eviction takes over.
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}

	if done != nil {
		select {
		case <-done:
		case <-time.After(s.opts.GracePeriod):
			s.log.Warn("server process did not reap after SIGKILL", "pid", pid)
		}
	}
}

func (s *Supervisor) setIdle() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Process-wide tracker backing CleanupAll.
var tracker struct {
	mu   sync.Mutex
	list []*Supervisor
}

func track(s *Supervisor) {
	tracker.mu.Lock()
	tracker.list = append(tracker.list, s)
	tracker.mu.Unlock()
}

// CleanupAll stops every Supervisor created during this process's lifetime.
// Failures are logged and swallowed so cleanup always runs to completion.
func CleanupAll() {
	tracker.mu.Lock()
	list := make([]*Supervisor, len(tracker.list))
	copy(list, tracker.list)
	tracker.mu.Unlock()

	for _, s := range list {
		if err := s.Stop(); err != nil {
			s.log.Warn("cleanup stop failed", "addr", s.Addr(), "error", err)
		}
	}
}
