package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/hostconfig"
	"github.com/camdenlow/rex/internal/remote"
	"github.com/camdenlow/rex/internal/remote/remotetest"
	"github.com/camdenlow/rex/internal/runner"
)

func testRunner(t *testing.T, open remote.Opener) *runner.Runner {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	content := `
Host alpha
    HostName 10.0.0.5
    User ops
    IdentityFile ~/.ssh/alpha_key

Host bravo
    HostName 10.0.0.6
    Port 2222
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	store, err := hostconfig.Load(path)
	require.NoError(t, err)
	return runner.New(store, runner.Config{Open: open})
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestExecuteCommand(t *testing.T) {
	fake := &remotetest.FakeSession{
		Result: &remote.Result{ExitStatus: 0, Stdout: []byte("up 3 days\n")},
	}
	tool := &ExecuteCommand{Runner: testRunner(t, fake.Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
		"command":  "uptime",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.Contains(t, text, "SUCCESS: Command executed on alpha")
	assert.Contains(t, text, "Command: uptime")
	assert.Contains(t, text, "Exit Code: 0")
	assert.Contains(t, text, "up 3 days")
	assert.True(t, fake.Closed())
}

func TestExecuteCommandTruncatesOutput(t *testing.T) {
	fake := &remotetest.FakeSession{
		Result: &remote.Result{Stdout: []byte(strings.Repeat("x", 100))},
	}
	tool := &ExecuteCommand{Runner: testRunner(t, fake.Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname":   "alpha",
		"command":    "yes",
		"max_length": 10,
	}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "xxxxxxxxxx... (truncated)")
	assert.NotContains(t, text, strings.Repeat("x", 11))
}

func TestExecuteCommandClampsTimeout(t *testing.T) {
	fake := &remotetest.FakeSession{}
	rec := remotetest.NewRecordingOpener(fake.Opener())
	tool := &ExecuteCommand{Runner: testRunner(t, rec.Open)}

	_, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
		"command":  "true",
		"timeout":  9999,
	}))
	require.NoError(t, err)

	require.Len(t, rec.Options, 1)
	assert.Equal(t, 300*time.Second, rec.Options[0].Timeout)

	_, err = tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
		"command":  "true",
		"timeout":  0,
	}))
	require.NoError(t, err)
	assert.Equal(t, time.Second, rec.Options[1].Timeout)
}

func TestExecuteCommandFailure(t *testing.T) {
	connErr := errors.New(errors.KindUnreachable, "connection refused", "")
	tool := &ExecuteCommand{Runner: testRunner(t, remotetest.FailingOpener(connErr))}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
		"command":  "true",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ERROR: Failed to execute command on alpha")
}

func TestExecuteCommandMissingArgs(t *testing.T) {
	tool := &ExecuteCommand{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListHosts(t *testing.T) {
	tool := &ListHosts{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(nil))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Configured SSH Hosts:")
	assert.Contains(t, text, "Host: alpha")
	assert.Contains(t, text, "Host: bravo")
	assert.Less(t, strings.Index(text, "Host: alpha"), strings.Index(text, "Host: bravo"),
		"aliases must keep file order")
}

func TestListHostsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte("# nothing here\n"), 0600))
	store, err := hostconfig.Load(path)
	require.NoError(t, err)
	tool := &ListHosts{Runner: runner.New(store, runner.Config{})}

	res, err := tool.Handler()(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, "No SSH hosts configured.", resultText(t, res))
}

func TestHostInfo(t *testing.T) {
	tool := &HostInfo{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
	}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Host Information for 'alpha':")
	assert.Contains(t, text, "Hostname: 10.0.0.5")
	assert.Contains(t, text, "Port: 22")
	assert.Contains(t, text, "User: ops")
	assert.Contains(t, text, "alpha_key")
}

func TestHostInfoDefaultsToNA(t *testing.T) {
	tool := &HostInfo{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "bravo",
	}))
	require.NoError(t, err)

	text := resultText(t, res)
	assert.Contains(t, text, "Port: 2222")
	assert.Contains(t, text, "User: N/A")
	assert.Contains(t, text, "IdentityFile: N/A")
}

func TestHostInfoUnknownHost(t *testing.T) {
	tool := &HostInfo{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "charlie",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ERROR: Host 'charlie' not found in configuration.")
}

func TestTestConnection(t *testing.T) {
	fake := &remotetest.FakeSession{}
	tool := &TestConnection{Runner: testRunner(t, fake.Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "SUCCESS: Connection to alpha successful", resultText(t, res))
	assert.True(t, fake.Closed())
	assert.Empty(t, fake.RunCalls, "connection test must not run a command")
}

func TestTestConnectionFailure(t *testing.T) {
	connErr := errors.New(errors.KindConnectTimeout, "timed out", "")
	tool := &TestConnection{Runner: testRunner(t, remotetest.FailingOpener(connErr))}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "alpha",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ERROR: Connection to alpha failed")
}

func TestTestConnectionUnknownHost(t *testing.T) {
	tool := &TestConnection{Runner: testRunner(t, (&remotetest.FakeSession{}).Opener())}

	res, err := tool.Handler()(context.Background(), callRequest(map[string]any{
		"hostname": "charlie",
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "ERROR: Host 'charlie' not found in configuration.")
}

func TestAllToolsHaveDistinctNames(t *testing.T) {
	r := testRunner(t, (&remotetest.FakeSession{}).Opener())

	seen := map[string]bool{}
	for _, tool := range All(r) {
		def := tool.Definition()
		assert.NotEmpty(t, def.Name)
		assert.False(t, seen[def.Name], "duplicate tool name %s", def.Name)
		seen[def.Name] = true
	}
	assert.Len(t, seen, 4)
}

func TestClamps(t *testing.T) {
	assert.Equal(t, time.Second, clampTimeout(-5))
	assert.Equal(t, 30*time.Second, clampTimeout(30))
	assert.Equal(t, 300*time.Second, clampTimeout(301))

	assert.Equal(t, 1, clampLength(0))
	assert.Equal(t, 500, clampLength(500))
	assert.Equal(t, 10_000_000, clampLength(20_000_000))
}
