// Package config loads rex settings from an optional YAML file merged
// with environment variables and built-in defaults.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/camdenlow/rex/internal/errors"
)

const (
	// GlobalConfigDir is the directory for the global config file,
	// relative to the home directory.
	GlobalConfigDir = ".config/rex"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Settings holds every tunable rex reads at startup. Flags override
// environment, environment overrides file values, file values override
// defaults.
type Settings struct {
	// SSHConfigPath is the OpenSSH config to resolve aliases from.
	SSHConfigPath string `yaml:"ssh_config" mapstructure:"ssh_config"`

	// ProxyConfigPath points at the JSON map of per-alias SOCKS5
	// proxies. Empty disables proxying.
	ProxyConfigPath string `yaml:"proxy_config" mapstructure:"proxy_config"`

	// Timeout bounds connect and authenticate per operation.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// MaxOutput clips each output stream to this many bytes in
	// tool responses. Zero disables clipping.
	MaxOutput int `yaml:"max_output" mapstructure:"max_output"`

	// StrictHostKey refuses unknown host keys instead of recording
	// them on first contact.
	StrictHostKey bool `yaml:"strict_host_key" mapstructure:"strict_host_key"`

	// KnownHostsPath overrides ~/.ssh/known_hosts.
	KnownHostsPath string `yaml:"known_hosts" mapstructure:"known_hosts"`

	// MCPTransport selects the serve transport: stdio, sse, or
	// streamable-http.
	MCPTransport string `yaml:"mcp_transport" mapstructure:"mcp_transport"`

	// MCPAddr is the listen address for the HTTP-based transports.
	MCPAddr string `yaml:"mcp_addr" mapstructure:"mcp_addr"`
}

// Load reads settings from the given file path. An empty path loads the
// global config when present, otherwise defaults plus environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	explicit := path != ""
	if path == "" {
		path = globalPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) || isNotFound(err) {
				if explicit {
					return nil, errors.Wrap(err, errors.KindConfigNotFound,
						"Config file not found: "+path,
						"Check the path passed to --config")
				}
			} else {
				return nil, errors.Wrap(err, errors.KindConfigParse,
					"Failed to read config file: "+path,
					"Check the file is valid YAML")
			}
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, errors.Wrap(err, errors.KindConfigParse,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	return s, nil
}

// LoadDefault loads settings without an explicit file.
func LoadDefault() (*Settings, error) {
	return Load("")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ssh_config", "")
	v.SetDefault("proxy_config", "")
	v.SetDefault("timeout", "30s")
	v.SetDefault("max_output", 0)
	v.SetDefault("strict_host_key", false)
	v.SetDefault("known_hosts", "")
	v.SetDefault("mcp_transport", "stdio")
	v.SetDefault("mcp_addr", ":8000")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("ssh_config", "SSH_CONFIG_PATH")
	v.BindEnv("proxy_config", "PROXY_CONFIG_PATH")
	v.BindEnv("mcp_transport", "MCP_TRANSPORT")
	v.BindEnv("mcp_addr", "MCP_ADDR")
	v.BindEnv("timeout", "REX_TIMEOUT")
	v.BindEnv("max_output", "REX_MAX_OUTPUT")
	v.BindEnv("strict_host_key", "REX_STRICT_HOST_KEY")
	v.BindEnv("known_hosts", "REX_KNOWN_HOSTS")
}

// globalPath returns ~/.config/rex/config.yaml when it exists.
func globalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return stderrors.As(err, &nf)
}
