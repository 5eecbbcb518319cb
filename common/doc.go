// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Tailtray application.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: Application-wide constants like timeouts and file names
//   - Errors: The error taxonomy for CLI invocation and output parsing
//   - Interfaces: Abstractions for notifications, logging, and credential storage
//   - Logger: Structured logging with multiple output destinations
//   - Utils: Common utility functions for directory resolution
//
// # Error Taxonomy
//
// Three kinds of failure flow through the application:
//
//   - *ExecError: the tailscale CLI could not run or exited non-zero.
//     On read-only fetches the affected field degrades to its default;
//     on mutating commands the failure surfaces as a status message.
//   - *ParseError: CLI output did not match the expected shape (version
//     skew). Non-critical fields downgrade to defaults, never crashing.
//   - ErrInvariant: an intent would violate the exit-node exclusivity
//     rule and is rejected before any process is spawned.
//
// Nothing in this taxonomy is fatal to the process. A missing tailscale
// binary is an expected operating condition, not a crash.
//
// # Usage
//
//	common.LogInfo("Starting refresh for account %s", acct)
//
//	if errors.Is(err, common.ErrInvariant) {
//	    // Rejected before any invocation was issued
//	}
package common
