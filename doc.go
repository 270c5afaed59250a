// Package scaffold builds MCP tool servers with a fixed decorator pipeline
// and transport-agnostic client sessions.
//
// Every registered tool runs inside the same stage stack: an exception
// boundary that normalizes failures into error results, a tool logger that
// scopes a correlation id around the call and emits start/end records to the
// configured logging destinations, a type converter that coerces raw
// arguments to the tool's declared parameter types, and, for tools marked
// parallel, a bounded fan-out stage that processes list items concurrently
// and reports per-item outcomes.
//
// # Serving tools
//
// Declare tools, load configuration, and run over stdio, streamable HTTP,
// or SSE:
//
//	echo := scaffold.NewTool("echo", "Echo the message back",
//	    func(ctx context.Context, args map[string]any) (any, error) {
//	        return args["message"], nil
//	    },
//	    scaffold.WithParams(scaffold.StringParam("message", true)),
//	)
//
//	cfg, err := scaffold.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv, err := scaffold.NewServer(cfg, []scaffold.Tool{echo}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Calling tools
//
// Sessions hide the transport behind one interface. OpenStdio spawns the
// server as a subprocess; OpenHTTP connects to one already running:
//
//	sess, err := scaffold.OpenStdio(ctx, scaffold.StdioOptions{
//	    Command: "scaffold-server",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close()
//
//	res, err := sess.CallTool(ctx, "echo", map[string]any{"message": "hello"})
//
// Transport failures during a call come back as error-shaped results, not
// raw errors, so callers handle one result shape everywhere.
//
// # Supervising server processes
//
// For tests and local development, NewSupervisor starts a server binary,
// evicts stale listeners from its port, waits for readiness, and guarantees
// teardown. CleanupAll stops every supervisor the process created.
package scaffold
