package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/camdenlow/rex/internal/runner"
)

// ExecuteCommand runs a shell command on a configured host.
type ExecuteCommand struct {
	Runner *runner.Runner
}

func (t *ExecuteCommand) Definition() mcp.Tool {
	return mcp.NewTool("execute_ssh_command",
		mcp.WithDescription("Execute a command on a remote host via SSH. "+
			"The host must be an alias from the SSH config."),
		mcp.WithString("hostname",
			mcp.Required(),
			mcp.Description("The hostname/alias of the target server as configured in SSH config"),
		),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The shell command to execute on the remote host"),
		),
		mcp.WithNumber("timeout",
			mcp.DefaultNumber(DefaultTimeoutSec),
			mcp.Description("SSH connection timeout in seconds (default: 30, max: 300)"),
		),
		mcp.WithNumber("max_length",
			mcp.DefaultNumber(DefaultMaxLength),
			mcp.Description("Maximum length of stdout/stderr output in characters (default: 1000, max: 10,000,000)"),
		),
	)
}

func (t *ExecuteCommand) Handler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostname, err := req.RequireString("hostname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		command, err := req.RequireString("command")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		timeout := clampTimeout(req.GetInt("timeout", DefaultTimeoutSec))
		maxLen := clampLength(req.GetInt("max_length", DefaultMaxLength))

		out := t.Runner.Execute(hostname, command, timeout)
		out.Truncate(maxLen)

		if out.Failure != nil {
			return mcp.NewToolResultError(out.Text()), nil
		}
		return mcp.NewToolResultText(out.Text()), nil
	}
}
