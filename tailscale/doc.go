// Package tailscale drives the external tailscale CLI for Tailtray.
//
// The CLI is treated as a black-box process that accepts arguments and
// emits text on its standard streams. This package is organized around
// four pieces:
//
//   - Runner: executes one invocation, capturing stdout/stderr and the
//     exit status. No state, no retries.
//   - Parsers: pure functions converting raw subcommand output into
//     typed fields. They never abort on unexpected output; malformed
//     records are skipped and missing fields degrade to defaults.
//   - Fetcher: fans out the fixed set of read-only sub-queries
//     concurrently and assembles one immutable Snapshot.
//   - Client: typed wrappers around the mutating subcommands.
//
// # Degradation Policy
//
// The CLI's output format varies across versions and its presence on
// the system is optional. Every read path therefore degrades instead of
// failing: a fetch with a broken sub-query still returns a complete
// snapshot with only the affected field defaulted.
//
// # Thread Safety
//
// Runner implementations must be safe for concurrent use. Snapshot
// values are immutable once returned by the Fetcher.
package tailscale
