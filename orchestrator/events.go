// Package orchestrator is the application core: a single-writer state
// machine that turns user intents into CLI commands and folds their
// asynchronous completions back into the state.
package orchestrator

import (
	"github.com/google/uuid"

	"github.com/tailtray/tailtray/tailscale"
)

// Event is an input to the state machine: either a user intent posted
// by a frontend or the completion of a command the machine started.
type Event interface {
	isEvent()
}

// Field identifies an independently-mutable piece of state. Each field
// carries its own supersession counter so a completion for an old
// request never overwrites a newer one.
type Field int

const (
	// FieldFetch covers whole-snapshot refreshes.
	FieldFetch Field = iota
	// FieldSSH covers the SSH server toggle.
	FieldSSH
	// FieldRoutes covers the accept-routes toggle.
	FieldRoutes
	// FieldConnection covers up and down.
	FieldConnection
	// FieldExitNode covers both exit-node selection and
	// self-advertisement. They share a counter because the two are
	// mutually exclusive and each must supersede the other.
	FieldExitNode
	// FieldLAN covers the LAN-access toggle.
	FieldLAN
)

// User intents.

// Refresh requests a full state refresh.
type Refresh struct{}

// ToggleSSH enables or disables the tailscale SSH server.
type ToggleSSH struct{ Enable bool }

// ToggleRoutes enables or disables accepting advertised routes.
type ToggleRoutes struct{ Enable bool }

// SetConnection brings the connection up or down.
type SetConnection struct{ Up bool }

// SelectExitNode routes traffic through the exit node at Index.
// Index 0 is the "no exit node" placeholder.
type SelectExitNode struct{ Index int }

// AdvertiseSelf starts or stops advertising this host as an exit node.
type AdvertiseSelf struct{ Enable bool }

// AllowLAN keeps LAN access while routing through an exit node.
type AllowLAN struct{ Enable bool }

// SwitchAccount activates the login at Index.
type SwitchAccount struct{ Index int }

// SendFiles sends the given paths to the device at DeviceIndex.
type SendFiles struct {
	Paths       []string
	DeviceIndex int
}

// ReceiveFiles moves pending Taildrop inbox files to the download
// directory.
type ReceiveFiles struct{}

// DismissStatus clears the current status message immediately.
type DismissStatus struct{}

// Command completions. These are produced only by commands the machine
// itself started; frontends never post them.

type fetched struct {
	seq  uint64
	snap tailscale.Snapshot
}

type toggleDone struct {
	field  Field
	seq    uint64
	enable bool
	err    error
}

type connDone struct {
	seq uint64
	up  bool
	err error
}

type exitNodeDone struct {
	seq   uint64
	index int
	err   error
}

type advertiseDone struct {
	seq    uint64
	enable bool
	err    error
}

type lanDone struct {
	seq    uint64
	enable bool
	err    error
}

type accountDone struct {
	label string
	err   error
}

type sendDone struct {
	count  int
	device string
	err    error
}

type recvDone struct {
	err error
}

type statusExpired struct {
	token uuid.UUID
}

func (Refresh) isEvent()        {}
func (ToggleSSH) isEvent()      {}
func (ToggleRoutes) isEvent()   {}
func (SetConnection) isEvent()  {}
func (SelectExitNode) isEvent() {}
func (AdvertiseSelf) isEvent()  {}
func (AllowLAN) isEvent()       {}
func (SwitchAccount) isEvent()  {}
func (SendFiles) isEvent()      {}
func (ReceiveFiles) isEvent()   {}
func (DismissStatus) isEvent()  {}

func (fetched) isEvent()       {}
func (toggleDone) isEvent()    {}
func (connDone) isEvent()      {}
func (exitNodeDone) isEvent()  {}
func (advertiseDone) isEvent() {}
func (lanDone) isEvent()       {}
func (accountDone) isEvent()   {}
func (sendDone) isEvent()      {}
func (recvDone) isEvent()      {}
func (statusExpired) isEvent() {}
