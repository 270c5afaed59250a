// Package main is a minimal client for the scaffold tool server. It spawns
// the server over stdio, calls the echo tool, and prints the payload.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	scaffold "github.com/abnerjacobsen/mcp-cookie-cutter"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		serverCmd  string
		serverArgs []string
		toolName   string
	)

	cmd := &cobra.Command{
		Use:          "scaffold-client [message]",
		Short:        "Call a tool on the scaffold server over stdio",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			message := "hello"
			if len(args) == 1 {
				message = args[0]
			}

			sess, err := scaffold.OpenStdio(cmd.Context(), scaffold.StdioOptions{
				Command: serverCmd,
				Args:    serverArgs,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			res, err := sess.CallTool(cmd.Context(), toolName,
				map[string]any{"message": message})
			if err != nil {
				return err
			}
			if res.IsError {
				return fmt.Errorf("tool error: %s", res.Text)
			}

			fmt.Println(res.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverCmd, "server", "scaffold-server",
		"Server command to spawn")
	cmd.Flags().StringSliceVar(&serverArgs, "server-arg", nil,
		"Extra arguments passed to the server command")
	cmd.Flags().StringVar(&toolName, "tool", "echo", "Tool to call")

	return cmd
}
