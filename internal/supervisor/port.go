package supervisor

import (
	"context"
	"fmt"
	"net"
	"time"

	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// probePort reports whether a TCP listener is accepting connections at addr.
func probePort(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// waitForPort polls addr until it accepts a TCP connection or the deadline
// passes. The context aborts the wait early.
func waitForPort(ctx context.Context, addr string, interval, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if probePort(addr, interval) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("deadline exceeded waiting for %s", addr)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// findPortHolder scans live TCP connections for a process listening on port.
// Returns 0 when no listener is found or the holder's pid is unknown.
func findPortHolder(port uint32) (int32, error) {
	conns, err := gnet.Connections("tcp")
	if err != nil {
		return 0, fmt.Errorf("scanning tcp connections: %w", err)
	}
	for _, c := range conns {
		if c.Status == "LISTEN" && c.Laddr.Port == port {
			return c.Pid, nil
		}
	}
	return 0, nil
}

// evictPortHolder terminates whatever process currently listens on port so a
// supervised server can bind it. Termination is escalated from SIGTERM to
// SIGKILL when the holder does not exit within the grace window.
func evictPortHolder(port uint32, grace time.Duration) error {
	pid, err := findPortHolder(port)
	if err != nil {
		return err
	}
	if pid <= 0 {
		return nil
	}

	proc, err := process.NewProcess(pid)
	if err != nil {
		// Raced with the process exiting on its own.
		return nil
	}

	if err := proc.Terminate(); err == nil {
		deadline := time.Now().Add(grace)
		for time.Now().Before(deadline) {
			if running, _ := proc.IsRunning(); !running {
				return nil
			}
			time.Sleep(50 * time.Millisecond)
		}
	}

	if err := proc.Kill(); err != nil {
		if running, _ := proc.IsRunning(); running {
			return fmt.Errorf("killing pid %d holding port %d: %w", pid, port, err)
		}
	}
	return nil
}
