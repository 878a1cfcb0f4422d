package runner

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/camdenlow/rex/internal/errors"
)

// Stage names the phase of an execution that failed.
type Stage string

const (
	StageResolve Stage = "resolution"
	StageConnect Stage = "connection"
	StageExecute Stage = "execution"
)

// Exit codes used when the remote exit status is not obtainable.
const (
	exitCodeResolve = 2
	exitCodeConnect = 3
	exitCodeExecute = 4
)

// Failure is a classified failure carrying the stage it occurred in.
// A remote command exiting non-zero is NOT a Failure; that's a normal
// Outcome with a non-zero ExitStatus.
type Failure struct {
	Stage Stage
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Kind returns the error kind of the underlying cause.
func (f *Failure) Kind() string {
	return errors.KindOf(f.Err)
}

// Outcome is the caller-facing result of one operation against one host.
// Either Failure is set, or the exit status and output fields are all
// populated together.
type Outcome struct {
	Alias   string
	Command string

	ExitStatus int
	Stdout     []byte
	Stderr     []byte

	// Latency covers connect and authenticate; reported by ping.
	Latency time.Duration

	Failure *Failure
}

// Ran reports whether the command actually executed on the remote side,
// regardless of its exit status.
func (o Outcome) Ran() bool {
	return o.Failure == nil
}

// Succeeded reports whether the command ran and exited zero.
func (o Outcome) Succeeded() bool {
	return o.Failure == nil && o.ExitStatus == 0
}

// truncatedMarker is appended when output is clipped.
const truncatedMarker = "... (truncated)"

// Truncate clips stdout and stderr to at most max bytes each, marking
// clipped streams. The cut never splits a UTF-8 rune. max <= 0 leaves
// the outcome unchanged.
func (o *Outcome) Truncate(max int) {
	if max <= 0 {
		return
	}
	o.Stdout = truncate(o.Stdout, max)
	o.Stderr = truncate(o.Stderr, max)
}

func truncate(b []byte, max int) []byte {
	if len(b) <= max {
		return b
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	clipped := make([]byte, 0, cut+len(truncatedMarker))
	clipped = append(clipped, b[:cut]...)
	return append(clipped, truncatedMarker...)
}

// Text renders the outcome in the human-readable report format.
func (o Outcome) Text() string {
	var b strings.Builder

	if o.Failure != nil {
		fmt.Fprintf(&b, "ERROR: Failed to execute command on %s (%s)\n", o.Alias, o.Failure.Stage)
		fmt.Fprintf(&b, "Error: %v", o.Failure.Err)
		return b.String()
	}

	fmt.Fprintf(&b, "SUCCESS: Command executed on %s\n", o.Alias)
	fmt.Fprintf(&b, "Command: %s\n", o.Command)
	fmt.Fprintf(&b, "Exit Code: %d\n", o.ExitStatus)
	fmt.Fprintf(&b, "\nSTDOUT:\n%s", o.Stdout)

	if len(o.Stderr) > 0 {
		fmt.Fprintf(&b, "\n\nSTDERR:\n%s", o.Stderr)
	}

	return b.String()
}

// ExitCode maps the outcome to a process exit code: the remote exit
// status when the command ran, otherwise a distinct code per stage.
func (o Outcome) ExitCode() int {
	if o.Failure == nil {
		return o.ExitStatus
	}
	switch o.Failure.Stage {
	case StageResolve:
		return exitCodeResolve
	case StageConnect:
		return exitCodeConnect
	default:
		return exitCodeExecute
	}
}
