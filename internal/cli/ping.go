package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/ui"
)

var pingCmd = &cobra.Command{
	Use:   "ping <host>",
	Short: "Test connectivity and authentication to a host",
	Long: `Open an SSH connection to the host, authenticate, and close it
without running anything. Reports how long the handshake took.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPing(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, alias string) error {
	r, settings, err := newRunner()
	if err != nil {
		return emitError(cmd, err)
	}

	out := r.TestConnection(alias, settings.Timeout)

	if machineMode {
		if out.Failure != nil {
			WriteJSONError(cmd.OutOrStdout(),
				codeForKind(out.Failure.Kind()),
				out.Failure.Error(),
				suggestionOf(out.Failure.Err),
				map[string]interface{}{"host": alias})
			return errors.NewExitError(out.ExitCode())
		}
		return WriteJSONSuccess(cmd.OutOrStdout(), map[string]interface{}{
			"host":       alias,
			"reachable":  true,
			"latency_ms": out.Latency.Milliseconds(),
		})
	}

	if out.Failure != nil {
		fmt.Fprintln(os.Stderr, out.Failure.Err)
		return errors.NewExitError(out.ExitCode())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is reachable (%s)\n",
		ui.Success(ui.SymbolSuccess), ui.Bold(alias), out.Latency.Round(time.Millisecond))
	return nil
}
