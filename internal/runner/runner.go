// Package runner orchestrates single remote executions: resolve an alias
// to a profile, open a session, run the command, and always release the
// session, converting every failure into a classified outcome.
package runner

import (
	"time"

	"github.com/camdenlow/rex/internal/hostconfig"
	"github.com/camdenlow/rex/internal/logger"
	"github.com/camdenlow/rex/internal/remote"
)

// Config wires a Runner's collaborators.
type Config struct {
	// Proxies maps aliases to SOCKS5 proxies; may be nil.
	Proxies hostconfig.ProxyMap

	// Open creates sessions; defaults to remote.OpenSession.
	Open remote.Opener

	// Session carries base session options (host key policy, passphrase
	// prompt). Timeout and Proxy are set per call.
	Session remote.Options

	Log logger.Logger
}

// Runner executes commands on hosts resolved from an immutable store.
// Each call opens its own session; nothing is shared between concurrent
// calls except the read-only store.
type Runner struct {
	store   *hostconfig.Store
	proxies hostconfig.ProxyMap
	open    remote.Opener
	base    remote.Options
	log     logger.Logger
}

// New creates a Runner over the given store.
func New(store *hostconfig.Store, cfg Config) *Runner {
	open := cfg.Open
	if open == nil {
		open = remote.OpenSession
	}
	log := cfg.Log
	if log == nil {
		log = logger.Noop()
	}
	return &Runner{
		store:   store,
		proxies: cfg.Proxies,
		open:    open,
		base:    cfg.Session,
		log:     log,
	}
}

// Execute runs command on the host named by alias. The timeout bounds
// connect/authenticate only; command execution is unbounded here.
// The session is always closed, on every path.
func (r *Runner) Execute(alias, command string, timeout time.Duration) Outcome {
	out := Outcome{Alias: alias, Command: command}

	profile, err := r.store.Resolve(alias)
	if err != nil {
		out.Failure = &Failure{Stage: StageResolve, Err: err}
		return out
	}

	start := time.Now()
	sess, err := r.open(profile, r.sessionOptions(alias, timeout))
	if err != nil {
		out.Failure = &Failure{Stage: StageConnect, Err: err}
		return out
	}
	defer sess.Close()
	out.Latency = time.Since(start)

	r.log.Debug("running on %s: %s", alias, command)
	result, err := sess.Run(command)
	if err != nil {
		out.Failure = &Failure{Stage: StageExecute, Err: err}
		return out
	}

	out.ExitStatus = result.ExitStatus
	out.Stdout = result.Stdout
	out.Stderr = result.Stderr
	return out
}

// TestConnection validates reachability and authentication for alias
// without running a command. The outcome's Latency holds the time to a
// completed handshake.
func (r *Runner) TestConnection(alias string, timeout time.Duration) Outcome {
	out := Outcome{Alias: alias}

	profile, err := r.store.Resolve(alias)
	if err != nil {
		out.Failure = &Failure{Stage: StageResolve, Err: err}
		return out
	}

	start := time.Now()
	sess, err := r.open(profile, r.sessionOptions(alias, timeout))
	if err != nil {
		out.Failure = &Failure{Stage: StageConnect, Err: err}
		return out
	}
	out.Latency = time.Since(start)
	sess.Close()

	return out
}

// DescribeHost returns the resolved profile for alias without side
// effects.
func (r *Runner) DescribeHost(alias string) (*hostconfig.Profile, error) {
	return r.store.Resolve(alias)
}

// Aliases lists the configured concrete aliases in file order.
func (r *Runner) Aliases() []string {
	return r.store.Aliases()
}

// ConfigPath returns the SSH config path backing this runner.
func (r *Runner) ConfigPath() string {
	return r.store.Path()
}

func (r *Runner) sessionOptions(alias string, timeout time.Duration) remote.Options {
	opts := r.base
	opts.Timeout = timeout
	opts.Log = r.log
	if p, ok := r.proxies.For(alias); ok {
		opts.Proxy = &p
	}
	return opts
}
