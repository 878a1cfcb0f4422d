package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/runner"
)

// TestConnection checks reachability and authentication for one host
// without executing anything.
type TestConnection struct {
	Runner *runner.Runner
}

func (t *TestConnection) Definition() mcp.Tool {
	return mcp.NewTool("test_ssh_connection",
		mcp.WithDescription("Test SSH connection to a remote host without executing any commands."),
		mcp.WithString("hostname",
			mcp.Required(),
			mcp.Description("The hostname/alias of the target server to test"),
		),
		mcp.WithNumber("timeout",
			mcp.DefaultNumber(DefaultTimeoutSec),
			mcp.Description("SSH connection timeout in seconds (default: 30, max: 300)"),
		),
	)
}

func (t *TestConnection) Handler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostname, err := req.RequireString("hostname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		timeout := clampTimeout(req.GetInt("timeout", DefaultTimeoutSec))

		out := t.Runner.TestConnection(hostname, timeout)
		if out.Failure != nil {
			if errors.IsKind(out.Failure.Err, errors.KindUnknownHost) {
				return mcp.NewToolResultError(
					fmt.Sprintf("ERROR: Host '%s' not found in configuration.", hostname)), nil
			}
			return mcp.NewToolResultError(
				fmt.Sprintf("ERROR: Connection to %s failed: %v", hostname, out.Failure.Err)), nil
		}

		return mcp.NewToolResultText(
			fmt.Sprintf("SUCCESS: Connection to %s successful", hostname)), nil
	}
}
