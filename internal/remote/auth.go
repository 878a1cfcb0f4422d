package remote

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/camdenlow/rex/internal/hostconfig"
)

// PassphraseFunc supplies a passphrase for an encrypted private key.
// Returning an error skips the key.
type PassphraseFunc func(keyPath string) ([]byte, error)

// EncryptedKeyError is returned when a private key requires a passphrase
// and none was available.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// authMethods assembles the authentication methods for a profile, in
// order: ssh-agent, the profile's identity file, then default key files.
// The returned net.Conn (possibly nil) is the agent connection; it must
// stay open until the SSH handshake completes and is owned by the caller.
// encrypted lists keys that were skipped because they need a passphrase.
func authMethods(profile *hostconfig.Profile, passphrase PassphraseFunc) (methods []ssh.AuthMethod, agentConn net.Conn, encrypted []string, err error) {
	tryKey := func(keyPath string) {
		auth, keyErr := keyFileAuth(keyPath, passphrase)
		if keyErr != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(keyErr, &encErr) {
				encrypted = append(encrypted, keyPath)
			}
			// Missing or malformed keys are skipped silently.
			return
		}
		methods = append(methods, auth)
	}

	if auth, conn := agentAuth(); auth != nil {
		methods = append(methods, auth)
		agentConn = conn
	}

	if profile.IdentityFile != "" {
		tryKey(profile.IdentityFile)
	}

	for _, keyPath := range defaultKeyPaths() {
		if keyPath == profile.IdentityFile {
			continue
		}
		tryKey(keyPath)
	}

	if len(methods) == 0 {
		if agentConn != nil {
			agentConn.Close()
		}
		return nil, nil, encrypted, &noCredentialsError{encrypted: encrypted}
	}

	return methods, agentConn, encrypted, nil
}

// noCredentialsError means no usable auth material was found locally.
type noCredentialsError struct {
	encrypted []string
}

func (e *noCredentialsError) Error() string {
	if len(e.encrypted) > 0 {
		return fmt.Sprintf("found SSH key(s) but they're encrypted: %v", e.encrypted)
	}
	return "no SSH auth methods available"
}

// agentAuth returns an auth method backed by the SSH agent, plus the
// agent connection to close afterwards. Returns nils when the agent is
// unavailable or has no keys loaded.
func agentAuth() (ssh.AuthMethod, net.Conn) {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, nil
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, nil
	}

	client := agent.NewClient(conn)

	// An empty agent placed before other methods causes auth failures.
	signers, err := client.Signers()
	if err != nil || len(signers) == 0 {
		conn.Close()
		return nil, nil
	}

	return ssh.PublicKeysCallback(client.Signers), conn
}

// keyFileAuth loads a private key file into an auth method. Encrypted
// keys are decrypted via the passphrase func when one is provided;
// otherwise EncryptedKeyError is returned.
func keyFileAuth(keyPath string, passphrase PassphraseFunc) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err == nil {
		return ssh.PublicKeys(signer), nil
	}

	var missing *ssh.PassphraseMissingError
	if !stderrors.As(err, &missing) && !isEncryptedPEM(key) {
		return nil, err
	}

	if passphrase == nil {
		return nil, &EncryptedKeyError{Path: keyPath}
	}

	pass, err := passphrase(keyPath)
	if err != nil {
		return nil, &EncryptedKeyError{Path: keyPath}
	}
	signer, err = ssh.ParsePrivateKeyWithPassphrase(key, pass)
	if err != nil {
		return nil, &EncryptedKeyError{Path: keyPath}
	}

	return ssh.PublicKeys(signer), nil
}

// isEncryptedPEM checks for legacy PEM encryption markers that predate
// ssh.PassphraseMissingError.
func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("Proc-Type: 4,ENCRYPTED"))
}

func defaultKeyPaths() []string {
	return []string{
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

// userName picks the login name: the profile's User directive, else the
// local user, resolved the same way OpenSSH would.
func userName(profile *hostconfig.Profile) string {
	if profile.User != "" {
		return profile.User
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

// HostKeyMismatchError provides context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return fmt.Sprintf(
		"The server's host key doesn't match known_hosts.\n"+
			"  To update: ssh-keyscan -t rsa,ecdsa,ed25519 %s >> %s\n"+
			"  Or remove the old entry: ssh-keygen -R %s",
		host, e.KnownHosts, host)
}

// hostKeyCallback builds the host key verifier. With insecure set, host
// keys are not verified at all. Unknown hosts are recorded on first
// contact unless strict is set; a changed key always fails.
func hostKeyCallback(knownHostsPath string, insecure, strict bool) (ssh.HostKeyCallback, error) {
	if insecure {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // explicit opt-out
	}

	if knownHostsPath == "" {
		knownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}

	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		dir := filepath.Dir(knownHostsPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err != nil {
			var keyErr *knownhosts.KeyError
			if stderrors.As(err, &keyErr) {
				if len(keyErr.Want) > 0 {
					return &HostKeyMismatchError{
						Hostname:     hostname,
						ReceivedType: key.Type(),
						KnownHosts:   knownHostsPath,
						Want:         keyErr.Want,
					}
				}
				if !strict {
					return appendKnownHost(knownHostsPath, hostname, key)
				}
			}
		}
		return err
	}, nil
}

// appendKnownHost records a first-contact host key.
func appendKnownHost(path, hostname string, key ssh.PublicKey) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintln(f, knownhosts.Line([]string{hostname}, key))
	return err
}
