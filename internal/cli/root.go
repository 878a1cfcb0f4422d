// Package cli wires the rex commands: direct execution, host listing
// and inspection, connection testing, and the agent-facing server.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/camdenlow/rex/internal/config"
	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/hostconfig"
	"github.com/camdenlow/rex/internal/logger"
	"github.com/camdenlow/rex/internal/remote"
	"github.com/camdenlow/rex/internal/runner"
)

// Persistent flags shared by every command.
var (
	cfgFile       string
	sshConfigFlag string
	timeoutFlag   time.Duration
	insecureFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "rex <host> \"<command>\"",
	Short: "Run commands on hosts from your SSH config",
	Long: `rex resolves host aliases from your OpenSSH config and runs
commands on them over SSH.

Hosts come straight from ~/.ssh/config (or SSH_CONFIG_PATH); there is
no separate inventory to maintain.

Examples:
  rex web1 "uptime"
  rex db "systemctl status postgres"
  rex hosts
  rex ping web1`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if len(args) < 2 {
			return errors.New(errors.KindExec,
				"Missing command to run",
				fmt.Sprintf("Usage: rex %s \"<command>\"", args[0]))
		}
		return runExec(cmd, args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/rex/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&sshConfigFlag, "ssh-config", "", "SSH config file (default ~/.ssh/config)")
	rootCmd.PersistentFlags().DurationVarP(&timeoutFlag, "timeout", "t", 0, "connect timeout (e.g. 5s, 2m)")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&insecureFlag, "insecure", false, "skip host key verification")
}

// Execute runs the root command and exits the process with the
// appropriate code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		if machineMode {
			WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// loadSettings merges the config file with flag overrides.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if sshConfigFlag != "" {
		settings.SSHConfigPath = sshConfigFlag
	}
	if timeoutFlag > 0 {
		settings.Timeout = timeoutFlag
	}
	return settings, nil
}

// newRunner builds the execution facade from settings and flags.
func newRunner() (*runner.Runner, *config.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	var store *hostconfig.Store
	if settings.SSHConfigPath != "" {
		store, err = hostconfig.Load(settings.SSHConfigPath)
	} else {
		store, err = hostconfig.LoadDefault()
	}
	if err != nil {
		return nil, nil, err
	}

	proxies, err := hostconfig.LoadProxies(settings.ProxyConfigPath)
	if err != nil {
		return nil, nil, err
	}

	r := runner.New(store, runner.Config{
		Proxies: proxies,
		Session: remote.Options{
			InsecureIgnoreHostKey: insecureFlag,
			StrictHostKey:         settings.StrictHostKey,
			KnownHostsPath:        settings.KnownHostsPath,
			Passphrase:            promptPassphrase,
		},
		Log: logger.New("rex"),
	})
	return r, settings, nil
}
