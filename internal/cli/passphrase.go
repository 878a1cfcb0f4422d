package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassphrase asks for a key passphrase on the terminal. Outside a
// terminal it fails, which makes the key get skipped instead of
// blocking a non-interactive run.
func promptPassphrase(keyPath string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("no terminal to prompt for passphrase for %s", keyPath)
	}

	fmt.Fprintf(os.Stderr, "Enter passphrase for %s: ", keyPath)
	pass, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pass, nil
}
