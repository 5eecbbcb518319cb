// Package common provides shared constants, types, and utilities
// used across the Tailtray application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for orchestration and storage operations.
// These can be checked with errors.Is() for proper error handling.
var (
	// ErrInvariant is returned when an intent would violate the
	// exit-node exclusivity rule. The request is rejected before any
	// process is spawned.
	ErrInvariant = errors.New("operation violates exit-node exclusivity")

	// ErrTransferInFlight is returned when a Taildrop send or receive
	// is requested while one is already running.
	ErrTransferInFlight = errors.New("file transfer already in progress")

	// ErrNotInstalled indicates the tailscale CLI is missing from PATH.
	ErrNotInstalled = errors.New("tailscale CLI not found")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
)

// ExecError reports a tailscale CLI invocation that could not be
// spawned, exited non-zero, or produced output that is not valid text.
type ExecError struct {
	// Args are the CLI arguments of the failed invocation.
	Args []string
	// ExitCode is the process exit status, or -1 when the process
	// never ran.
	ExitCode int
	// Stderr is the trimmed standard error output, if any.
	Stderr string
	// Err is the underlying error, if any.
	Err error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("tailscale %s failed", strings.Join(e.Args, " "))
	if e.ExitCode >= 0 {
		msg += fmt.Sprintf(" (exit %d)", e.ExitCode)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ParseError reports CLI output that did not match the expected shape,
// typically due to version skew of the external tool. Callers downgrade
// it to a default value for non-critical fields.
type ParseError struct {
	// What names the field or structure being parsed.
	What string
	// Err is the underlying decode error, if any.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("parse %s: unexpected output shape", e.What)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
