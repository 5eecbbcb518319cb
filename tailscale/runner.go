// Package tailscale drives the external tailscale CLI.
// This file contains the Runner, which executes one CLI invocation and
// captures its output.
package tailscale

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tailtray/tailtray/common"
)

// DefaultBinary is the program name resolved via PATH.
const DefaultBinary = "tailscale"

// Runner executes one tailscale CLI invocation to completion and
// returns its standard output. Implementations must be safe for
// concurrent use; the fetcher issues several invocations at once.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// CLIRunner runs the real tailscale binary. The zero value is not
// usable; construct with NewCLIRunner.
type CLIRunner struct {
	bin     string
	timeout time.Duration
}

// NewCLIRunner returns a runner for the tailscale binary with the
// default per-invocation timeout.
func NewCLIRunner() *CLIRunner {
	return &CLIRunner{
		bin:     DefaultBinary,
		timeout: common.CommandTimeout,
	}
}

// NewCLIRunnerWith returns a runner for a specific binary and timeout.
// A zero timeout disables the deadline.
func NewCLIRunnerWith(bin string, timeout time.Duration) *CLIRunner {
	return &CLIRunner{bin: bin, timeout: timeout}
}

// Installed reports whether the tailscale binary can be found in PATH.
func Installed() bool {
	_, err := exec.LookPath(DefaultBinary)
	return err == nil
}

// Run executes the binary with the given arguments and returns stdout
// on a zero exit status. Spawn failures, non-zero exits, timeouts, and
// non-UTF-8 output all map to *common.ExecError. No retries: the caller
// decides whether a failure is fatal or "feature unavailable".
func (r *CLIRunner) Run(ctx context.Context, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &common.ExecError{
			Args:     args,
			ExitCode: exitCode,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", &common.ExecError{
			Args:     args,
			ExitCode: 0,
			Stderr:   "output is not valid UTF-8",
		}
	}

	return stdout.String(), nil
}
