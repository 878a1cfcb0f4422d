package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camdenlow/rex/internal/mcptools"
)

var (
	serveTransport string
	serveAddr      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rex tools over MCP",
	Long: `Run an MCP server exposing the rex operations as tools:
execute_ssh_command, list_ssh_hosts, get_host_info, and
test_ssh_connection.

The transport defaults to stdio for agent integration. The sse and
streamable-http transports listen on --addr. MCP_TRANSPORT and
MCP_ADDR set the defaults.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "transport: stdio, sse, or streamable-http")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address for HTTP transports")
}

func runServe(cmd *cobra.Command) error {
	r, settings, err := newRunner()
	if err != nil {
		return emitError(cmd, err)
	}

	transport := settings.MCPTransport
	if serveTransport != "" {
		transport = serveTransport
	}
	addr := settings.MCPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	switch transport {
	case "stdio", "sse", "streamable-http":
	default:
		return fmt.Errorf("unknown transport %q (want stdio, sse, or streamable-http)", transport)
	}

	if transport != "stdio" {
		fmt.Fprintf(os.Stderr, "rex MCP server listening on %s (%s)\n", addr, transport)
	}

	s := mcptools.NewServer(r, version)
	return mcptools.Serve(s, transport, addr)
}
