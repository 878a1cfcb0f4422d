package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camdenlow/rex/internal/errors"
	"github.com/camdenlow/rex/internal/runner"
)

// runExec executes one command on one host and mirrors the remote exit
// status as the process exit code.
func runExec(cmd *cobra.Command, alias, command string) error {
	r, settings, err := newRunner()
	if err != nil {
		return emitError(cmd, err)
	}

	out := r.Execute(alias, command, settings.Timeout)
	out.Truncate(settings.MaxOutput)

	if machineMode {
		return emitOutcome(cmd, out)
	}

	if out.Failure != nil {
		fmt.Fprintln(os.Stderr, out.Failure.Err)
		return errors.NewExitError(out.ExitCode())
	}

	os.Stdout.Write(out.Stdout)
	os.Stderr.Write(out.Stderr)
	if out.ExitStatus != 0 {
		return errors.NewExitError(out.ExitStatus)
	}
	return nil
}

// emitError reports a pre-execution failure (config, resolution setup)
// in the selected output mode.
func emitError(cmd *cobra.Command, err error) error {
	if machineMode {
		WriteJSONFromError(cmd.OutOrStdout(), err)
		return errors.NewExitError(exitCodeFor(err))
	}
	return err
}

// emitOutcome renders an outcome as a JSON envelope. Failures and
// non-zero exits still surface through the process exit code.
func emitOutcome(cmd *cobra.Command, out runner.Outcome) error {
	if out.Failure != nil {
		WriteJSONError(cmd.OutOrStdout(),
			codeForKind(out.Failure.Kind()),
			out.Failure.Error(),
			suggestionOf(out.Failure.Err),
			map[string]interface{}{
				"host":  out.Alias,
				"stage": string(out.Failure.Stage),
			})
		return errors.NewExitError(out.ExitCode())
	}

	WriteJSONSuccess(cmd.OutOrStdout(), execPayload(out))
	if out.ExitStatus != 0 {
		return errors.NewExitError(out.ExitStatus)
	}
	return nil
}

// execPayload is the data section of a successful execution envelope.
type execResult struct {
	Host       string `json:"host"`
	Command    string `json:"command,omitempty"`
	ExitStatus int    `json:"exit_status"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMS int64  `json:"duration_ms,omitempty"`
}

func execPayload(out runner.Outcome) execResult {
	return execResult{
		Host:       out.Alias,
		Command:    out.Command,
		ExitStatus: out.ExitStatus,
		Stdout:     string(out.Stdout),
		Stderr:     string(out.Stderr),
		DurationMS: out.Latency.Milliseconds(),
	}
}

// exitCodeFor picks the process exit code for failures that happen
// before an outcome exists.
func exitCodeFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindUnknownHost, errors.KindConfigNotFound, errors.KindConfigParse:
		return 2
	default:
		return 1
	}
}
