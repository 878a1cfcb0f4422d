// Package hostconfig loads OpenSSH-style client configuration and resolves
// host aliases into connection profiles.
package hostconfig

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"

	"github.com/camdenlow/rex/internal/errors"
)

// DefaultPort is the SSH port used when the config has no Port directive.
const DefaultPort = 22

// Profile holds the resolved connection parameters for one alias.
type Profile struct {
	Alias        string `yaml:"alias" json:"alias"`
	Hostname     string `yaml:"hostname" json:"hostname"`
	Port         int    `yaml:"port" json:"port"`
	User         string `yaml:"user,omitempty" json:"user,omitempty"`
	IdentityFile string `yaml:"identity_file,omitempty" json:"identity_file,omitempty"`
}

// Address returns the host:port string for dialing.
func (p *Profile) Address() string {
	return net.JoinHostPort(p.Hostname, strconv.Itoa(p.Port))
}

// Store is an immutable mapping from alias to Profile, built once from an
// SSH config file. Safe for concurrent reads.
type Store struct {
	path     string
	aliases  []string            // concrete aliases in file order
	profiles map[string]*Profile // keyed by alias
}

// DefaultPath returns the SSH config path: $SSH_CONFIG_PATH if set,
// otherwise ~/.ssh/config.
func DefaultPath() string {
	if p := os.Getenv("SSH_CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join(homeDir(), ".ssh", "config")
}

// Load parses the SSH config file at path into a Store.
// Repeated loads of an unchanged file produce the same mapping.
func Load(path string) (*Store, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.KindConfigNotFound,
				fmt.Sprintf("SSH config not found at %s", path),
				"Create it, or point SSH_CONFIG_PATH at an existing config.")
		}
		return nil, errors.Wrap(err, errors.KindConfigNotFound,
			fmt.Sprintf("Can't read SSH config at %s", path),
			"Check the file permissions.")
	}

	// The ssh_config library doesn't support Match directives, so only the
	// content before the first Match block is parsed.
	trimmed := stripMatchBlocks(content)

	cfg, err := ssh_config.Decode(bytes.NewReader(trimmed))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindConfigParse,
			fmt.Sprintf("Can't parse SSH config at %s", path),
			"Check the file for syntax errors: ssh -G <host>")
	}

	s := &Store{
		path:     path,
		profiles: make(map[string]*Profile),
	}

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			// Wildcard and negated patterns are matchable but never
			// themselves resolvable aliases.
			if !isConcreteAlias(alias) {
				continue
			}
			if _, ok := s.profiles[alias]; ok {
				continue
			}

			profile, err := buildProfile(cfg, alias)
			if err != nil {
				return nil, err
			}
			s.aliases = append(s.aliases, alias)
			s.profiles[alias] = profile
		}
	}

	return s, nil
}

// LoadDefault loads the store from DefaultPath().
func LoadDefault() (*Store, error) {
	return Load(DefaultPath())
}

// Path returns the config file path the store was loaded from.
func (s *Store) Path() string {
	return s.path
}

// Aliases returns all concrete aliases in file order.
func (s *Store) Aliases() []string {
	out := make([]string, len(s.aliases))
	copy(out, s.aliases)
	return out
}

// Resolve returns the profile for alias. Lookups are case-sensitive and
// never fall back to a wildcard-only entry.
func (s *Store) Resolve(alias string) (*Profile, error) {
	p, ok := s.profiles[alias]
	if !ok {
		return nil, errors.New(errors.KindUnknownHost,
			fmt.Sprintf("Host '%s' not found in %s", alias, s.path),
			"List configured hosts with: rex hosts")
	}
	cp := *p
	return &cp, nil
}

// buildProfile resolves the directives for one concrete alias. Directive
// precedence (including values inherited from matching wildcard blocks)
// is first-match-wins, handled by the ssh_config library.
func buildProfile(cfg *ssh_config.Config, alias string) (*Profile, error) {
	p := &Profile{
		Alias:    alias,
		Hostname: alias,
		Port:     DefaultPort,
	}

	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		p.Hostname = hostname
	}

	if port, _ := cfg.Get(alias, "Port"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return nil, errors.New(errors.KindConfigParse,
				fmt.Sprintf("Host '%s' has an invalid Port: %q", alias, port),
				"Port must be an integer between 1 and 65535.")
		}
		p.Port = n
	}

	if user, _ := cfg.Get(alias, "User"); user != "" {
		p.User = user
	}

	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		p.IdentityFile = ExpandPath(identity)
	}

	return p, nil
}

// isConcreteAlias reports whether an alias names a single host rather than
// a wildcard or negated pattern.
func isConcreteAlias(alias string) bool {
	if alias == "" {
		return false
	}
	if strings.HasPrefix(alias, "!") {
		return false
	}
	return !strings.ContainsAny(alias, "*?")
}

// stripMatchBlocks returns content up to the first Match directive.
func stripMatchBlocks(content []byte) []byte {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		trimmed := strings.ToLower(strings.TrimSpace(line))
		if strings.HasPrefix(trimmed, "match ") || trimmed == "match" {
			return []byte(strings.Join(lines[:i], "\n"))
		}
	}
	return content
}

// ExpandPath expands a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
