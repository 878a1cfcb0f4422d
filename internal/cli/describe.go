package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/camdenlow/rex/internal/ui"
)

var describeYAML bool

var describeCmd = &cobra.Command{
	Use:   "describe <host>",
	Short: "Show the resolved profile for a host",
	Long: `Show the connection profile rex resolved for a host alias:
hostname, port, user, and identity file, after applying every matching
block in the SSH config in first-match-wins order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDescribe(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().BoolVar(&describeYAML, "yaml", false, "output YAML")
}

// profileView is the serialized shape of a resolved profile.
type profileView struct {
	Alias        string `json:"alias" yaml:"alias"`
	Hostname     string `json:"hostname" yaml:"hostname"`
	Port         int    `json:"port" yaml:"port"`
	User         string `json:"user,omitempty" yaml:"user,omitempty"`
	IdentityFile string `json:"identity_file,omitempty" yaml:"identity_file,omitempty"`
}

func runDescribe(cmd *cobra.Command, alias string) error {
	r, _, err := newRunner()
	if err != nil {
		return emitError(cmd, err)
	}

	p, err := r.DescribeHost(alias)
	if err != nil {
		return emitError(cmd, err)
	}

	view := profileView{
		Alias:        p.Alias,
		Hostname:     p.Hostname,
		Port:         p.Port,
		User:         p.User,
		IdentityFile: p.IdentityFile,
	}

	switch {
	case machineMode:
		return WriteJSONSuccess(cmd.OutOrStdout(), view)
	case describeYAML:
		data, err := yaml.Marshal(view)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", ui.Bold(p.Alias))
	fmt.Fprintf(out, "  hostname  %s\n", p.Hostname)
	fmt.Fprintf(out, "  port      %d\n", p.Port)
	if p.User != "" {
		fmt.Fprintf(out, "  user      %s\n", p.User)
	}
	if p.IdentityFile != "" {
		fmt.Fprintf(out, "  identity  %s\n", p.IdentityFile)
	}
	return nil
}
