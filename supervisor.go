package scaffold

import (
	"github.com/abnerjacobsen/mcp-cookie-cutter/internal/supervisor"
)

// Supervisor manages a server subprocess and the port it binds.
type Supervisor = supervisor.Supervisor

// SupervisorOptions configures NewSupervisor.
type SupervisorOptions = supervisor.Options

// NewSupervisor builds a supervisor for a server binary and registers it for
// CleanupAll.
func NewSupervisor(opts SupervisorOptions) *Supervisor {
	return supervisor.New(opts)
}

// CleanupAll stops every supervisor created during this process's lifetime.
// Call it from a top-level defer or signal handler so no managed server
// process outlives its owner.
func CleanupAll() {
	supervisor.CleanupAll()
}
