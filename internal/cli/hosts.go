package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/camdenlow/rex/internal/ui"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List hosts from your SSH config",
	Long: `List the concrete host aliases found in your SSH config, in file
order. Wildcard and negated patterns are not listed; they only
contribute directives to the hosts that match them.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHosts(cmd)
	},
}

func init() {
	rootCmd.AddCommand(hostsCmd)
}

// hostEntry is the JSON shape of one listed host.
type hostEntry struct {
	Alias    string `json:"alias"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	User     string `json:"user,omitempty"`
}

func runHosts(cmd *cobra.Command) error {
	r, _, err := newRunner()
	if err != nil {
		return emitError(cmd, err)
	}

	aliases := r.Aliases()

	if machineMode {
		entries := make([]hostEntry, 0, len(aliases))
		for _, alias := range aliases {
			p, err := r.DescribeHost(alias)
			if err != nil {
				continue
			}
			entries = append(entries, hostEntry{
				Alias:    p.Alias,
				Hostname: p.Hostname,
				Port:     p.Port,
				User:     p.User,
			})
		}
		return WriteJSONSuccess(cmd.OutOrStdout(), map[string]interface{}{
			"config": r.ConfigPath(),
			"hosts":  entries,
		})
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		ui.DisableColor()
	}

	if len(aliases) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No hosts in %s\n", r.ConfigPath())
		return nil
	}

	rows := make([][]string, 0, len(aliases))
	for _, alias := range aliases {
		p, err := r.DescribeHost(alias)
		if err != nil {
			continue
		}
		user := p.User
		if user == "" {
			user = ui.Muted("-")
		}
		rows = append(rows, []string{ui.Bold(p.Alias), p.Address(), user})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", ui.Muted(r.ConfigPath()))
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderColumns(rows))
	return nil
}
