package remote

import (
	stderrors "errors"
	"fmt"
	"net"
	"runtime"
	"strings"

	"github.com/camdenlow/rex/internal/errors"
)

// classifyDial converts a TCP-level dial failure into a categorized error.
func classifyDial(alias, address string, err error) *errors.Error {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.KindConnectTimeout,
			fmt.Sprintf("Connection to '%s' at %s timed out", alias, address),
			"Host might be offline or blocked by a firewall.")
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout"):
		return errors.Wrap(err, errors.KindConnectTimeout,
			fmt.Sprintf("Connection to '%s' at %s timed out", alias, address),
			"Host might be offline or blocked by a firewall.")
	case strings.Contains(errStr, "connection refused"):
		return errors.Wrap(err, errors.KindUnreachable,
			fmt.Sprintf("Connection to '%s' at %s was refused", alias, address),
			fmt.Sprintf("Is SSH running on that box? Try: ssh %s", alias))
	case strings.Contains(errStr, "no route to host"),
		strings.Contains(errStr, "network is unreachable"),
		strings.Contains(errStr, "host is down"):
		return errors.Wrap(err, errors.KindUnreachable,
			fmt.Sprintf("Can't route to '%s' at %s", alias, address),
			"Check your network connection.")
	case strings.Contains(errStr, "no such host"):
		return errors.Wrap(err, errors.KindUnreachable,
			fmt.Sprintf("Can't resolve the hostname for '%s' (%s)", alias, address),
			"Check the HostName directive for typos.")
	}

	return errors.Wrap(err, errors.KindUnreachable,
		fmt.Sprintf("Can't reach '%s' at %s", alias, address),
		fmt.Sprintf("Make sure the host is reachable: ping %s", alias))
}

// classifyHandshake converts an SSH handshake failure into a categorized
// error. encrypted lists identity files skipped for lack of a passphrase;
// they sharpen the suggestion on auth failures.
func classifyHandshake(alias string, err error, encrypted []string) *errors.Error {
	var hostKeyErr *HostKeyMismatchError
	if stderrors.As(err, &hostKeyErr) {
		return errors.Wrap(err, errors.KindHostKey,
			hostKeyErr.Error(),
			hostKeyErr.Suggestion())
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "deadline exceeded"):
		return errors.Wrap(err, errors.KindConnectTimeout,
			fmt.Sprintf("SSH handshake with '%s' timed out", alias),
			"The host accepted the connection but never completed the handshake.")
	case strings.Contains(errStr, "unable to authenticate"),
		strings.Contains(errStr, "no supported methods"),
		strings.Contains(errStr, "permission denied"),
		strings.Contains(errStr, "authentication failed"):
		return errors.Wrap(err, errors.KindAuthFailed,
			fmt.Sprintf("Authentication to '%s' failed", alias),
			authSuggestion(encrypted))
	case strings.Contains(errStr, "host key"),
		strings.Contains(errStr, "knownhosts: key is unknown"):
		return errors.Wrap(err, errors.KindHostKey,
			fmt.Sprintf("Host key verification for '%s' failed", alias),
			fmt.Sprintf("Try connecting manually first: ssh %s", alias))
	}

	return errors.Wrap(err, errors.KindUnreachable,
		fmt.Sprintf("SSH handshake with '%s' didn't go through", alias),
		fmt.Sprintf("Is that endpoint really an SSH server? Try: ssh %s", alias))
}

// authSuggestion builds the fix-it hint for authentication failures.
func authSuggestion(encrypted []string) string {
	if len(encrypted) == 0 {
		return "Check your keys are loaded: ssh-add -l"
	}

	var sb strings.Builder
	sb.WriteString("Your key(s) are encrypted. Add them to the agent:\n")
	for _, key := range encrypted {
		if runtime.GOOS == "darwin" {
			sb.WriteString(fmt.Sprintf("  ssh-add --apple-use-keychain %s\n", key))
		} else {
			sb.WriteString(fmt.Sprintf("  ssh-add %s\n", key))
		}
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}
