// Package tailscale drives the external tailscale CLI.
// This file contains the Snapshot type, an immutable point-in-time
// capture of all externally-observed state.
package tailscale

// ConnState is the backend connection state reported by the CLI.
type ConnState int

const (
	// StateUnknown means the backend state could not be determined.
	StateUnknown ConnState = iota
	// StateStopped means the tailscale backend is down.
	StateStopped
	// StateStarting means the backend is coming up.
	StateStarting
	// StateRunning means the backend is up and connected.
	StateRunning
)

// String returns a human-readable representation of the connection state.
func (s ConnState) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Device is a remote peer known to the current tailnet.
type Device struct {
	// Name is the peer's display hostname.
	Name string
	// Addr is the peer's tailnet IPv4 address.
	Addr string
	// Online reports whether the peer is currently reachable.
	Online bool
}

// ExitNode is a peer that offers to route default internet traffic.
type ExitNode struct {
	// ID is the peer's full ts.net hostname.
	ID string
	// Name is the first hostname label, used for display and for the
	// --exit-node flag.
	Name string
}

// Account is a configured tailscale login.
type Account struct {
	// Label is the account's display name.
	Label string
	// Active reports whether this is the currently selected account.
	Active bool
}

// Snapshot is an immutable capture of all externally-observed state.
// It is constructed only by the Fetcher and replaced wholesale on each
// refresh; nothing mutates a snapshot in place.
type Snapshot struct {
	// Conn is the backend connection state.
	Conn ConnState
	// IP is this host's tailnet IPv4 address, empty when unknown.
	IP string
	// DNSName is this host's ts.net name without the trailing dot,
	// empty when unknown.
	DNSName string
	// SSH reports whether the tailscale SSH server is enabled.
	SSH bool
	// AcceptRoutes reports whether advertised subnet routes are accepted.
	AcceptRoutes bool
	// SelfExitNode reports whether this host advertises itself as an
	// exit node.
	SelfExitNode bool
	// AllowLAN reports whether LAN access is kept while routing through
	// an exit node. Seeded from the config record, not the CLI.
	AllowLAN bool
	// SelectedExitNode is the index into ExitNodes of the node this
	// host routes through, or nil when none is selected. Index 0 is
	// the "no exit node" placeholder.
	SelectedExitNode *int
	// Devices are the known remote peers, in CLI output order.
	Devices []Device
	// ExitNodes are the candidate exit nodes, in CLI output order.
	ExitNodes []ExitNode
	// Accounts are the configured logins.
	Accounts []Account
}

// Normalize enforces the exit-node exclusivity invariant: a host that
// advertises itself as an exit node cannot also route through one.
func (s Snapshot) Normalize() Snapshot {
	if s.SelfExitNode {
		s.SelectedExitNode = nil
	}
	return s
}

// CurrentAccount returns the label of the active account, or empty.
func (s Snapshot) CurrentAccount() string {
	for _, a := range s.Accounts {
		if a.Active {
			return a.Label
		}
	}
	return ""
}

// ExitNodeAt returns the exit node at index i, if valid.
func (s Snapshot) ExitNodeAt(i int) (ExitNode, bool) {
	if i < 0 || i >= len(s.ExitNodes) {
		return ExitNode{}, false
	}
	return s.ExitNodes[i], true
}
