package hostconfig

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/camdenlow/rex/internal/errors"
)

// defaultProxyPort is the conventional SOCKS5 port.
const defaultProxyPort = 1080

// Proxy describes a SOCKS5 proxy used to reach one host.
type Proxy struct {
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Address returns the proxy's host:port, defaulting the port to 1080.
func (p Proxy) Address() string {
	port := p.Port
	if port == 0 {
		port = defaultProxyPort
	}
	return net.JoinHostPort(p.Host, strconv.Itoa(port))
}

// ProxyMap maps a host alias to the proxy used to reach it.
type ProxyMap map[string]Proxy

// For returns the proxy configured for alias, if any.
func (m ProxyMap) For(alias string) (Proxy, bool) {
	p, ok := m[alias]
	return p, ok
}

// LoadProxies reads a JSON proxy map from path. An empty path means no
// proxies are configured and returns a nil map.
func LoadProxies(path string) (ProxyMap, error) {
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.KindConfigNotFound,
				fmt.Sprintf("Proxy config not found at %s", path),
				"Fix PROXY_CONFIG_PATH or remove it.")
		}
		return nil, errors.Wrap(err, errors.KindConfigNotFound,
			fmt.Sprintf("Can't read proxy config at %s", path),
			"Check the file permissions.")
	}

	var m ProxyMap
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, errors.Wrap(err, errors.KindConfigParse,
			fmt.Sprintf("Can't parse proxy config at %s", path),
			"The file must be a JSON object mapping alias to {host, port, username, password}.")
	}

	for alias, p := range m {
		if p.Host == "" {
			return nil, errors.New(errors.KindConfigParse,
				fmt.Sprintf("Proxy entry %q in %s is missing \"host\"", alias, path),
				"Every proxy entry needs at least a host.")
		}
	}

	return m, nil
}

// LoadProxiesFromEnv loads the proxy map named by PROXY_CONFIG_PATH,
// returning nil when the variable is unset.
func LoadProxiesFromEnv() (ProxyMap, error) {
	return LoadProxies(os.Getenv("PROXY_CONFIG_PATH"))
}
