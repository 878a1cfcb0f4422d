// Package remotetest provides fake sessions for testing code that
// executes remote commands without a network.
package remotetest

import (
	"sync"

	"github.com/camdenlow/rex/internal/hostconfig"
	"github.com/camdenlow/rex/internal/remote"
)

// FakeSession implements remote.ExecSession with canned behavior and
// records every call for assertions.
type FakeSession struct {
	mu sync.Mutex

	// Result is returned by Run when RunErr is nil.
	Result *remote.Result
	// RunErr, when set, makes Run fail.
	RunErr error
	// CloseErr, when set, is returned by the first Close.
	CloseErr error

	RunCalls   []string
	CloseCalls int
}

// Run returns the configured result or error and records the command.
func (f *FakeSession) Run(command string) (*remote.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.RunCalls = append(f.RunCalls, command)
	if f.RunErr != nil {
		return nil, f.RunErr
	}
	if f.Result != nil {
		return f.Result, nil
	}
	return &remote.Result{}, nil
}

// Close records the call. Only the first call returns CloseErr, matching
// the idempotence contract of the real session.
func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CloseCalls++
	if f.CloseCalls == 1 {
		return f.CloseErr
	}
	return nil
}

// Closed reports whether Close was called at least once.
func (f *FakeSession) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CloseCalls > 0
}

// Opener returns a remote.Opener that always yields this session and
// records the profile and options it was opened with.
func (f *FakeSession) Opener() remote.Opener {
	return func(profile *hostconfig.Profile, opts remote.Options) (remote.ExecSession, error) {
		return f, nil
	}
}

// FailingOpener returns a remote.Opener whose Open always fails with err.
func FailingOpener(err error) remote.Opener {
	return func(profile *hostconfig.Profile, opts remote.Options) (remote.ExecSession, error) {
		return nil, err
	}
}

// RecordingOpener wraps an opener and records the profiles passed to it.
type RecordingOpener struct {
	mu       sync.Mutex
	inner    remote.Opener
	Profiles []*hostconfig.Profile
	Options  []remote.Options
}

// NewRecordingOpener wraps inner with call recording.
func NewRecordingOpener(inner remote.Opener) *RecordingOpener {
	return &RecordingOpener{inner: inner}
}

// Open implements remote.Opener.
func (r *RecordingOpener) Open(profile *hostconfig.Profile, opts remote.Options) (remote.ExecSession, error) {
	r.mu.Lock()
	r.Profiles = append(r.Profiles, profile)
	r.Options = append(r.Options, opts)
	r.mu.Unlock()
	return r.inner(profile, opts)
}
