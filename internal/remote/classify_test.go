package remote

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/camdenlow/rex/internal/errors"
)

func TestClassifyDial(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{
			name:     "timeout",
			err:      stderrors.New("dial tcp 10.0.0.5:22: i/o timeout"),
			wantKind: errors.KindConnectTimeout,
		},
		{
			name:     "refused",
			err:      stderrors.New("dial tcp 10.0.0.5:22: connect: connection refused"),
			wantKind: errors.KindUnreachable,
		},
		{
			name:     "no route",
			err:      stderrors.New("dial tcp 10.0.0.5:22: connect: no route to host"),
			wantKind: errors.KindUnreachable,
		},
		{
			name:     "network unreachable",
			err:      stderrors.New("dial tcp 10.0.0.5:22: connect: network is unreachable"),
			wantKind: errors.KindUnreachable,
		},
		{
			name:     "dns failure",
			err:      stderrors.New("dial tcp: lookup nope.invalid: no such host"),
			wantKind: errors.KindUnreachable,
		},
		{
			name:     "unknown",
			err:      stderrors.New("something odd"),
			wantKind: errors.KindUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDial("alpha", "10.0.0.5:22", tt.err)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.True(t, stderrors.Is(got, tt.err))
		})
	}
}

func TestClassifyHandshake(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
	}{
		{
			name:     "auth rejected",
			err:      stderrors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none publickey], no supported methods remain"),
			wantKind: errors.KindAuthFailed,
		},
		{
			name:     "permission denied",
			err:      stderrors.New("permission denied (publickey)"),
			wantKind: errors.KindAuthFailed,
		},
		{
			name:     "handshake timeout",
			err:      stderrors.New("ssh: handshake failed: read tcp 127.0.0.1:1->127.0.0.1:22: i/o timeout"),
			wantKind: errors.KindConnectTimeout,
		},
		{
			name:     "host key problem",
			err:      stderrors.New("ssh: handshake failed: knownhosts: host key verification failed"),
			wantKind: errors.KindHostKey,
		},
		{
			name:     "not an ssh server",
			err:      stderrors.New("ssh: handshake failed: ssh: no common algorithm for key exchange"),
			wantKind: errors.KindUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyHandshake("alpha", tt.err, nil)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestClassifyHandshakeHostKeyMismatch(t *testing.T) {
	cause := &HostKeyMismatchError{
		Hostname:     "10.0.0.5:22",
		ReceivedType: "ssh-ed25519",
		KnownHosts:   "/home/u/.ssh/known_hosts",
	}
	wrapped := stderrors.Join(stderrors.New("ssh: handshake failed"), cause)

	got := classifyHandshake("alpha", wrapped, nil)
	assert.Equal(t, errors.KindHostKey, got.Kind)
	assert.Contains(t, got.Suggestion, "ssh-keygen -R")
}

func TestAuthSuggestionMentionsEncryptedKeys(t *testing.T) {
	s := authSuggestion([]string{"/home/u/.ssh/id_ed25519"})
	assert.Contains(t, s, "ssh-add")
	assert.Contains(t, s, "/home/u/.ssh/id_ed25519")

	assert.Contains(t, authSuggestion(nil), "ssh-add -l")
}
