// Package remote opens authenticated SSH transports and runs single
// commands over them. One session serves exactly one command; callers
// create a session, run, and close.
package remote

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/net/proxy"

	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/hostconfig"
	"github.com/camdenlow/rex/internal/logger"
)

// DefaultTimeout bounds the connect/authenticate phase when the caller
// doesn't supply one.
const DefaultTimeout = 10 * time.Second

// Result is the raw outcome of one remote command: the exit status and
// the separately captured output streams. A non-zero ExitStatus is a
// successful execution, not an error.
type Result struct {
	ExitStatus int
	Stdout     []byte
	Stderr     []byte
}

// ExecSession is the transport surface the execution layer depends on.
// Both *Session and test fakes satisfy it.
type ExecSession interface {
	// Run executes a single non-interactive command to completion.
	Run(command string) (*Result, error)

	// Close releases the transport. Idempotent; closing while Run is in
	// flight unblocks it with an interrupted failure.
	Close() error
}

// Opener creates a session for a profile. The indirection exists so the
// execution layer can be tested without a network.
type Opener func(profile *hostconfig.Profile, opts Options) (ExecSession, error)

// Options configures how a session is opened.
type Options struct {
	// Timeout bounds the TCP dial and SSH handshake. Zero means
	// DefaultTimeout. It does not bound command execution.
	Timeout time.Duration

	// Proxy, when set, routes the TCP connection through a SOCKS5 proxy.
	Proxy *hostconfig.Proxy

	// InsecureIgnoreHostKey disables known_hosts verification.
	InsecureIgnoreHostKey bool

	// StrictHostKey refuses unknown host keys instead of recording
	// them on first contact.
	StrictHostKey bool

	// KnownHostsPath overrides ~/.ssh/known_hosts.
	KnownHostsPath string

	// Passphrase, when set, is consulted for encrypted identity files.
	Passphrase PassphraseFunc

	Log logger.Logger
}

// Session is a live authenticated transport bound to one profile.
// At most one command runs on it; once closed it cannot be reused.
type Session struct {
	profile   *hostconfig.Profile
	client    *ssh.Client
	agentConn net.Conn

	mu     sync.Mutex
	closed bool
}

// Open establishes an authenticated transport to the profile's endpoint.
func Open(profile *hostconfig.Profile, opts Options) (*Session, error) {
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	methods, agentConn, encrypted, err := authMethods(profile, opts.Passphrase)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindAuthFailed,
			fmt.Sprintf("No usable credentials for '%s'", profile.Alias),
			authSuggestion(encrypted))
	}

	callback, err := hostKeyCallback(opts.KnownHostsPath, opts.InsecureIgnoreHostKey, opts.StrictHostKey)
	if err != nil {
		closeQuietly(agentConn)
		return nil, errors.Wrap(err, errors.KindHostKey,
			"Couldn't load known_hosts",
			"Check ~/.ssh/known_hosts is readable.")
	}

	config := &ssh.ClientConfig{
		User:            userName(profile),
		Auth:            methods,
		HostKeyCallback: callback,
		Timeout:         timeout,
	}

	address := profile.Address()
	log.Debug("dialing %s (%s)", profile.Alias, address)

	conn, err := dialTCP(address, opts.Proxy, timeout)
	if err != nil {
		closeQuietly(agentConn)
		return nil, classifyDial(profile.Alias, address, err)
	}

	// NewClientConn has no handshake timeout of its own; a connection
	// deadline keeps a silent peer from hanging us.
	_ = conn.SetDeadline(time.Now().Add(timeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		closeQuietly(agentConn)
		return nil, classifyHandshake(profile.Alias, err, encrypted)
	}
	_ = conn.SetDeadline(time.Time{})

	log.Debug("connected to %s as %s", profile.Alias, config.User)

	return &Session{
		profile:   profile,
		client:    ssh.NewClient(sshConn, chans, reqs),
		agentConn: agentConn,
	}, nil
}

// OpenSession adapts Open to the Opener type.
func OpenSession(profile *hostconfig.Profile, opts Options) (ExecSession, error) {
	return Open(profile, opts)
}

// Run executes the command and collects stdout and stderr separately.
// It blocks until the command terminates or the session is closed from
// another goroutine, in which case it fails as interrupted.
func (s *Session) Run(command string) (*Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New(errors.KindSessionClosed,
			fmt.Sprintf("Session to '%s' is closed", s.profile.Alias),
			"Open a new session; sessions are single use.")
	}
	client := s.client
	s.mu.Unlock()

	sess, err := client.NewSession()
	if err != nil {
		return nil, s.runError(command, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	if err := sess.Run(command); err != nil {
		var exitErr *ssh.ExitError
		if stderrors.As(err, &exitErr) {
			// The command ran to completion; non-zero exit is data.
			return &Result{
				ExitStatus: exitErr.ExitStatus(),
				Stdout:     stdout.Bytes(),
				Stderr:     stderr.Bytes(),
			}, nil
		}
		return nil, s.runError(command, err)
	}

	return &Result{
		ExitStatus: 0,
		Stdout:     stdout.Bytes(),
		Stderr:     stderr.Bytes(),
	}, nil
}

// runError classifies a failure from the run path, distinguishing a
// session torn down mid-command from genuine execution errors.
func (s *Session) runError(command string, err error) error {
	if s.isClosed() {
		return errors.Wrap(err, errors.KindInterrupted,
			fmt.Sprintf("Command on '%s' was interrupted", s.profile.Alias),
			"The session was closed while the command was running.")
	}

	var missing *ssh.ExitMissingError
	if stderrors.As(err, &missing) {
		return errors.Wrap(err, errors.KindExec,
			fmt.Sprintf("Command on '%s' ended without an exit status", s.profile.Alias),
			"The remote side closed the channel abnormally.")
	}

	return errors.Wrap(err, errors.KindExec,
		fmt.Sprintf("Failed to execute command on '%s': %s", s.profile.Alias, command),
		"The connection may have dropped. Try again.")
}

// Close releases the transport. Safe to call multiple times and safe to
// call concurrently with Run.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	closeQuietly(s.agentConn)
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// dialTCP opens the TCP connection, optionally through a SOCKS5 proxy.
func dialTCP(address string, p *hostconfig.Proxy, timeout time.Duration) (net.Conn, error) {
	if p == nil {
		return net.DialTimeout("tcp", address, timeout)
	}

	var auth *proxy.Auth
	if p.Username != "" || p.Password != "" {
		auth = &proxy.Auth{User: p.Username, Password: p.Password}
	}

	dialer, err := proxy.SOCKS5("tcp", p.Address(), auth, &net.Dialer{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	if cd, ok := dialer.(proxy.ContextDialer); ok {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return cd.DialContext(ctx, "tcp", address)
	}
	return dialer.Dial("tcp", address)
}

func closeQuietly(conn net.Conn) {
	if conn != nil {
		conn.Close()
	}
}
