// Package mcptools exposes rex operations as MCP tools so agents can
// run commands on configured hosts: execute_ssh_command,
// list_ssh_hosts, get_host_info, and test_ssh_connection.
package mcptools

import (
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/camdenlow/rex/internal/runner"
)

// Tool provides both the definition and the handler for an MCP tool.
type Tool interface {
	Definition() mcp.Tool
	Handler() server.ToolHandlerFunc
}

// Parameter bounds. Out-of-range values are clamped, not rejected.
const (
	DefaultTimeoutSec = 30
	minTimeoutSec     = 1
	maxTimeoutSec     = 300

	DefaultMaxLength = 1000
	minLength        = 1
	maxLength        = 10_000_000
)

// NewServer builds the MCP server with every rex tool registered.
func NewServer(r *runner.Runner, version string) *server.MCPServer {
	s := server.NewMCPServer("rex", version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, t := range All(r) {
		s.AddTool(t.Definition(), t.Handler())
	}
	return s
}

// All returns every tool bound to the given runner.
func All(r *runner.Runner) []Tool {
	return []Tool{
		&ExecuteCommand{Runner: r},
		&ListHosts{Runner: r},
		&HostInfo{Runner: r},
		&TestConnection{Runner: r},
	}
}

// Serve runs the server on the selected transport. addr is only used
// by the HTTP-based transports.
func Serve(s *server.MCPServer, transport, addr string) error {
	switch transport {
	case "sse":
		return server.NewSSEServer(s).Start(addr)
	case "streamable-http":
		return server.NewStreamableHTTPServer(s).Start(addr)
	default:
		return server.ServeStdio(s)
	}
}

// clampTimeout bounds a timeout request to 1s..5m.
func clampTimeout(seconds int) time.Duration {
	if seconds < minTimeoutSec {
		seconds = minTimeoutSec
	}
	if seconds > maxTimeoutSec {
		seconds = maxTimeoutSec
	}
	return time.Duration(seconds) * time.Second
}

// clampLength bounds an output length request to 1..10M.
func clampLength(n int) int {
	if n < minLength {
		return minLength
	}
	if n > maxLength {
		return maxLength
	}
	return n
}
