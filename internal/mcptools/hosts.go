package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/camdenlow/rex/internal/runner"
)

// ListHosts reports every concrete alias from the SSH config.
type ListHosts struct {
	Runner *runner.Runner
}

func (t *ListHosts) Definition() mcp.Tool {
	return mcp.NewTool("list_ssh_hosts",
		mcp.WithDescription("List all configured SSH hosts."),
	)
}

func (t *ListHosts) Handler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		aliases := t.Runner.Aliases()
		if len(aliases) == 0 {
			return mcp.NewToolResultText("No SSH hosts configured."), nil
		}

		var b strings.Builder
		b.WriteString("Configured SSH Hosts:\n")
		b.WriteString(strings.Repeat("=", 25) + "\n\n")
		for _, alias := range aliases {
			fmt.Fprintf(&b, "Host: %s\n", alias)
		}
		return mcp.NewToolResultText(b.String()), nil
	}
}

// HostInfo reports the resolved profile for one alias.
type HostInfo struct {
	Runner *runner.Runner
}

func (t *HostInfo) Definition() mcp.Tool {
	return mcp.NewTool("get_host_info",
		mcp.WithDescription("Get detailed information about a specific SSH host."),
		mcp.WithString("hostname",
			mcp.Required(),
			mcp.Description("The hostname/alias of the target server"),
		),
	)
}

func (t *HostInfo) Handler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hostname, err := req.RequireString("hostname")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		p, err := t.Runner.DescribeHost(hostname)
		if err != nil {
			return mcp.NewToolResultError(
				fmt.Sprintf("ERROR: Host '%s' not found in configuration.", hostname)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Host Information for '%s':\n", hostname)
		b.WriteString(strings.Repeat("=", 35) + "\n\n")
		fmt.Fprintf(&b, "Hostname: %s\n", p.Hostname)
		fmt.Fprintf(&b, "Port: %d\n", p.Port)
		fmt.Fprintf(&b, "User: %s\n", orNA(p.User))
		fmt.Fprintf(&b, "IdentityFile: %s\n", orNA(p.IdentityFile))
		return mcp.NewToolResultText(b.String()), nil
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
