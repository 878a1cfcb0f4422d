package hostconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camdenlow/rex/internal/errors"
)

func writeProxyConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proxies.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadProxies(t *testing.T) {
	path := writeProxyConfig(t, `{
  "alpha": {"host": "socks.corp.example.com", "port": 1085, "username": "u", "password": "p"},
  "bravo": {"host": "10.1.1.1"}
}`)

	proxies, err := LoadProxies(path)
	require.NoError(t, err)
	require.Len(t, proxies, 2)

	alpha, ok := proxies.For("alpha")
	require.True(t, ok)
	assert.Equal(t, "socks.corp.example.com:1085", alpha.Address())
	assert.Equal(t, "u", alpha.Username)

	// Port defaults to 1080 when omitted.
	bravo, ok := proxies.For("bravo")
	require.True(t, ok)
	assert.Equal(t, "10.1.1.1:1080", bravo.Address())

	_, ok = proxies.For("charlie")
	assert.False(t, ok)
}

func TestLoadProxiesEmptyPath(t *testing.T) {
	proxies, err := LoadProxies("")
	assert.NoError(t, err)
	assert.Nil(t, proxies)
}

func TestLoadProxiesMissingFile(t *testing.T) {
	_, err := LoadProxies(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfigNotFound))
}

func TestLoadProxiesInvalidJSON(t *testing.T) {
	path := writeProxyConfig(t, `{"alpha": `)

	_, err := LoadProxies(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfigParse))
}

func TestLoadProxiesMissingHost(t *testing.T) {
	path := writeProxyConfig(t, `{"alpha": {"port": 1080}}`)

	_, err := LoadProxies(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfigParse))
}

func TestLoadProxiesFromEnv(t *testing.T) {
	t.Setenv("PROXY_CONFIG_PATH", "")
	proxies, err := LoadProxiesFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, proxies)

	path := writeProxyConfig(t, `{"alpha": {"host": "10.1.1.1"}}`)
	t.Setenv("PROXY_CONFIG_PATH", path)
	proxies, err = LoadProxiesFromEnv()
	require.NoError(t, err)
	assert.Len(t, proxies, 1)
}
