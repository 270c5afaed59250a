//go:build integration

// Package integration exercises the server binary end to end over both
// transports. The binary is built once in TestMain and removed afterwards.
package integration

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	scaffold "github.com/abnerjacobsen/mcp-cookie-cutter"
)

var serverBin string

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "scaffold-integration")
	if err != nil {
		fmt.Fprintln(os.Stderr, "temp dir:", err)
		os.Exit(1)
	}

	serverBin = filepath.Join(dir, "scaffold-server")

	build := exec.Command("go", "build", "-o", serverBin, "../cmd/scaffold-server")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "building server binary:", err)
		os.Exit(1)
	}

	code := m.Run()

	scaffold.CleanupAll()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// freePort grabs a port from the kernel and releases it for a server to use.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return port
}
