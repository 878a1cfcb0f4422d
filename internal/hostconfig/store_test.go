package hostconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camdenlow/rex/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadAndResolve(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
    Port 22
    User ops

Host bravo
    HostName bravo.example.com
    Port 2222
    IdentityFile ~/.ssh/id_bravo
`)

	store, err := Load(path)
	require.NoError(t, err)

	alpha, err := store.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", alpha.Alias)
	assert.Equal(t, "10.0.0.5", alpha.Hostname)
	assert.Equal(t, 22, alpha.Port)
	assert.Equal(t, "ops", alpha.User)
	assert.Equal(t, "", alpha.IdentityFile)
	assert.Equal(t, "10.0.0.5:22", alpha.Address())

	bravo, err := store.Resolve("bravo")
	require.NoError(t, err)
	assert.Equal(t, "bravo.example.com", bravo.Hostname)
	assert.Equal(t, 2222, bravo.Port)
	assert.Equal(t, "", bravo.User)
	assert.Contains(t, bravo.IdentityFile, "id_bravo")
	assert.NotContains(t, bravo.IdentityFile, "~")
}

func TestResolveUnknownHost(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
`)

	store, err := Load(path)
	require.NoError(t, err)

	_, err = store.Resolve("beta")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindUnknownHost))
}

func TestResolveNeverFallsBackToWildcard(t *testing.T) {
	// "beta" matches the wildcard block, but wildcards are not aliases.
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5

Host *
    User fallback
`)

	store, err := Load(path)
	require.NoError(t, err)

	_, err = store.Resolve("beta")
	assert.True(t, errors.IsKind(err, errors.KindUnknownHost))
}

func TestWildcardDirectivesInheritedByConcreteAlias(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
    User ops

Host *
    User fallback
    Port 2200
`)

	store, err := Load(path)
	require.NoError(t, err)

	alpha, err := store.Resolve("alpha")
	require.NoError(t, err)

	// Explicit directive wins; missing ones inherit from the wildcard.
	assert.Equal(t, "ops", alpha.User)
	assert.Equal(t, 2200, alpha.Port)
}

func TestHostnameDefaultsToAlias(t *testing.T) {
	path := writeConfig(t, `
Host shorthand
    User ops
`)

	store, err := Load(path)
	require.NoError(t, err)

	p, err := store.Resolve("shorthand")
	require.NoError(t, err)
	assert.Equal(t, "shorthand", p.Hostname)
	assert.Equal(t, DefaultPort, p.Port)
}

func TestAliasesFileOrderExcludingPatterns(t *testing.T) {
	path := writeConfig(t, `
Host zulu
    HostName 10.0.0.9

Host *
    ServerAliveInterval 60

Host work-*
    User workuser

Host alpha bravo
    HostName 10.0.0.5

Host !alpha
    Port 2222
`)

	store, err := Load(path)
	require.NoError(t, err)

	// File order preserved, wildcard/negated patterns excluded.
	assert.Equal(t, []string{"zulu", "alpha", "bravo"}, store.Aliases())
}

func TestAliasesCollapsesDuplicates(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName first.example.com

Host alpha
    HostName second.example.com
`)

	store, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, store.Aliases())

	// First match wins per ssh_config precedence.
	p, err := store.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "first.example.com", p.Hostname)
}

func TestLoadIdempotent(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
Host bravo
    HostName 10.0.0.6
`)

	first, err := Load(path)
	require.NoError(t, err)
	second, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, first.Aliases(), second.Aliases())
	for _, alias := range first.Aliases() {
		p1, err := first.Resolve(alias)
		require.NoError(t, err)
		p2, err := second.Resolve(alias)
		require.NoError(t, err)
		assert.Equal(t, p1, p2)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfigNotFound))
}

func TestLoadInvalidPort(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
    Port banana
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConfigParse))
}

func TestLoadStopsAtMatchBlock(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5

Match user ops
    Port 2222
`)

	store, err := Load(path)
	require.NoError(t, err)

	p, err := store.Resolve("alpha")
	require.NoError(t, err)
	// Directives inside the Match block are not applied.
	assert.Equal(t, DefaultPort, p.Port)
}

func TestResolveReturnsCopy(t *testing.T) {
	path := writeConfig(t, `
Host alpha
    HostName 10.0.0.5
`)

	store, err := Load(path)
	require.NoError(t, err)

	p, err := store.Resolve("alpha")
	require.NoError(t, err)
	p.Hostname = "mutated"

	again, err := store.Resolve("alpha")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", again.Hostname)
}

func TestDefaultPathEnvOverride(t *testing.T) {
	t.Setenv("SSH_CONFIG_PATH", "/tmp/custom-ssh-config")
	assert.Equal(t, "/tmp/custom-ssh-config", DefaultPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh", "id_test"), ExpandPath("~/.ssh/id_test"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "relative", ExpandPath("relative"))
}
