package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/tailscale"
)

// Source produces state snapshots.
type Source interface {
	Fetch(ctx context.Context) tailscale.Snapshot
}

// Backend issues mutating commands. *tailscale.Client is the production
// implementation.
type Backend interface {
	SetSSH(ctx context.Context, enabled bool) error
	SetAcceptRoutes(ctx context.Context, enabled bool) error
	Up(ctx context.Context, authKey string) error
	Down(ctx context.Context) error
	SetExitNode(ctx context.Context, name string) error
	AdvertiseExitNode(ctx context.Context, enabled bool) error
	AllowLANAccess(ctx context.Context, allowed bool) error
	SwitchAccount(ctx context.Context, label string) error
	SendFiles(ctx context.Context, paths []string, target string) error
	ReceiveFiles(ctx context.Context, dir string) error
}

// ConfigWriter persists settings once they are confirmed.
type ConfigWriter interface {
	SetExitNode(idx int)
	SetAllowLAN(allowed bool)
}

// Recorder keeps an audit trail of completed operations.
type Recorder interface {
	Record(op, detail string, err error)
}

// Cmd is an asynchronous side effect started by Update. It runs on its
// own goroutine and returns the completion event to feed back, or nil.
type Cmd func(ctx context.Context) Event

// View is the render-ready projection of the current state.
type View struct {
	Snap      tailscale.Snapshot
	Status    *StatusMessage
	Sending   bool
	Receiving bool
}

// Options configures an Orchestrator. Source and Backend are required;
// everything else is optional.
type Options struct {
	Source  Source
	Backend Backend
	Clock   Clock

	// Config persists confirmed exit-node and LAN settings.
	Config ConfigWriter
	// Recorder logs completed operations.
	Recorder Recorder
	// Notifier raises desktop notifications for failures and transfers.
	Notifier common.Notifier
	// AuthKey supplies an auth key for unattended `up`, or empty.
	AuthKey func() string
	// OnRender is called after every state transition.
	OnRender func(View)
	// DownloadDir receives Taildrop files. Defaults to the user's
	// download directory.
	DownloadDir string

	// InitialExitNode and InitialAllowLAN seed the state from the
	// persisted config before the first fetch completes.
	InitialExitNode int
	InitialAllowLAN bool
}

// Orchestrator is the single writer of application state. All state
// transitions happen in Update, which only ever runs on the Run loop
// goroutine; commands execute concurrently but report back as events.
type Orchestrator struct {
	opts   Options
	events chan Event

	snap      tailscale.Snapshot
	status    *StatusMessage
	seq       map[Field]uint64
	sending   bool
	receiving bool
}

// New creates an orchestrator. Source and Backend must be set.
func New(opts Options) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.DownloadDir == "" {
		if dir, err := common.DownloadDir(); err == nil {
			opts.DownloadDir = dir
		}
	}

	o := &Orchestrator{
		opts:   opts,
		events: make(chan Event, 16),
		seq:    make(map[Field]uint64),
	}
	if opts.InitialExitNode > 0 {
		idx := opts.InitialExitNode
		o.snap.SelectedExitNode = &idx
	}
	o.snap.AllowLAN = opts.InitialAllowLAN
	return o
}

// Post feeds an event into the machine. Safe from any goroutine.
func (o *Orchestrator) Post(ev Event) {
	o.events <- ev
}

// Run drives the machine until ctx is cancelled. It starts with a
// refresh so frontends render real state as soon as possible.
func (o *Orchestrator) Run(ctx context.Context) {
	o.step(ctx, Refresh{})
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-o.events:
			o.step(ctx, ev)
		}
	}
}

func (o *Orchestrator) step(ctx context.Context, ev Event) {
	cmds := o.Update(ev)
	if o.opts.OnRender != nil {
		o.opts.OnRender(o.View())
	}
	for _, cmd := range cmds {
		go func(c Cmd) {
			if done := c(ctx); done != nil {
				o.Post(done)
			}
		}(cmd)
	}
}

// View returns a copy of the render-ready state.
func (o *Orchestrator) View() View {
	v := View{Snap: o.snap, Sending: o.sending, Receiving: o.receiving}
	if o.status != nil {
		s := *o.status
		v.Status = &s
	}
	return v
}

// Update applies one event and returns the commands it triggers. It
// must only run on a single goroutine; Run guarantees that in
// production.
func (o *Orchestrator) Update(ev Event) []Cmd {
	switch ev := ev.(type) {
	case Refresh:
		return []Cmd{o.fetchCmd()}
	case fetched:
		o.applyFetch(ev)
		return nil

	case ToggleSSH:
		return o.toggleCmd(FieldSSH, ev.Enable)
	case ToggleRoutes:
		return o.toggleCmd(FieldRoutes, ev.Enable)
	case toggleDone:
		return o.applyToggle(ev)

	case SetConnection:
		return o.connectionCmd(ev.Up)
	case connDone:
		return o.applyConnection(ev)

	case SelectExitNode:
		return o.selectExitNodeCmd(ev.Index)
	case exitNodeDone:
		return o.applyExitNode(ev)

	case AdvertiseSelf:
		return o.advertiseCmd(ev.Enable)
	case advertiseDone:
		return o.applyAdvertise(ev)

	case AllowLAN:
		return o.allowLANCmd(ev.Enable)
	case lanDone:
		return o.applyLAN(ev)

	case SwitchAccount:
		return o.switchAccountCmd(ev.Index)
	case accountDone:
		return o.applyAccount(ev)

	case SendFiles:
		return o.sendFilesCmd(ev)
	case sendDone:
		return o.applySend(ev)
	case ReceiveFiles:
		return o.receiveFilesCmd()
	case recvDone:
		return o.applyReceive(ev)

	case DismissStatus:
		o.status = nil
		return nil
	case statusExpired:
		if o.status != nil && o.status.Token == ev.token {
			o.status = nil
		}
		return nil
	}
	return nil
}

// next advances a field's supersession counter. Completions carrying an
// older value are dropped on arrival.
func (o *Orchestrator) next(field Field) uint64 {
	o.seq[field]++
	return o.seq[field]
}

func (o *Orchestrator) stale(field Field, seq uint64) bool {
	return seq != o.seq[field]
}

// Refresh.

func (o *Orchestrator) fetchCmd() Cmd {
	seq := o.next(FieldFetch)
	return func(ctx context.Context) Event {
		return fetched{seq: seq, snap: o.opts.Source.Fetch(ctx)}
	}
}

func (o *Orchestrator) applyFetch(ev fetched) {
	if o.stale(FieldFetch, ev.seq) {
		return
	}

	snap := ev.snap
	// The CLI does not report which exit node is in use, so the last
	// confirmed selection is carried across refreshes while it remains
	// a valid index and the host is not itself an exit node.
	if prev := o.snap.SelectedExitNode; prev != nil && !snap.SelfExitNode {
		if _, ok := snap.ExitNodeAt(*prev); ok {
			idx := *prev
			snap.SelectedExitNode = &idx
		}
	}
	snap.AllowLAN = o.snap.AllowLAN
	o.snap = snap.Normalize()
}

// SSH and accept-routes toggles. The switch is not flipped until the
// CLI confirms; the completion carries the confirmed value and a
// refresh then re-reads the daemon's actual state.

func (o *Orchestrator) toggleCmd(field Field, enable bool) []Cmd {
	seq := o.next(field)
	return []Cmd{func(ctx context.Context) Event {
		var err error
		switch field {
		case FieldSSH:
			err = o.opts.Backend.SetSSH(ctx, enable)
		case FieldRoutes:
			err = o.opts.Backend.SetAcceptRoutes(ctx, enable)
		}
		return toggleDone{field: field, seq: seq, enable: enable, err: err}
	}}
}

func (o *Orchestrator) applyToggle(ev toggleDone) []Cmd {
	if o.stale(ev.field, ev.seq) {
		return nil
	}

	name, op := "SSH", "set-ssh"
	if ev.field == FieldRoutes {
		name, op = "Accept routes", "set-accept-routes"
	}
	o.record(op, fmt.Sprintf("enable=%t", ev.enable), ev.err)

	if ev.err != nil {
		return o.fail(fmt.Sprintf("Failed to update %s", name), ev.err)
	}

	switch ev.field {
	case FieldSSH:
		o.snap.SSH = ev.enable
	case FieldRoutes:
		o.snap.AcceptRoutes = ev.enable
	}
	verb := "enabled"
	if !ev.enable {
		verb = "disabled"
	}
	return append(o.info(fmt.Sprintf("%s %s", name, verb)), o.fetchCmd())
}

// Connection.

func (o *Orchestrator) connectionCmd(up bool) []Cmd {
	seq := o.next(FieldConnection)
	authKey := ""
	if up && o.opts.AuthKey != nil {
		authKey = o.opts.AuthKey()
	}
	return []Cmd{func(ctx context.Context) Event {
		var err error
		if up {
			err = o.opts.Backend.Up(ctx, authKey)
		} else {
			err = o.opts.Backend.Down(ctx)
		}
		return connDone{seq: seq, up: up, err: err}
	}}
}

func (o *Orchestrator) applyConnection(ev connDone) []Cmd {
	if o.stale(FieldConnection, ev.seq) {
		return nil
	}

	op := "down"
	if ev.up {
		op = "up"
	}
	o.record(op, "", ev.err)

	if ev.err != nil {
		return o.fail("Failed to change connection", ev.err)
	}

	text := "Disconnected"
	if ev.up {
		text = "Connected"
	}
	return append(o.info(text), o.fetchCmd())
}

// Exit node selection. Selecting a node while advertising first stops
// advertising; both steps run inside one command and the second step is
// skipped when the first fails.

func (o *Orchestrator) selectExitNodeCmd(index int) []Cmd {
	node, ok := o.snap.ExitNodeAt(index)
	if !ok {
		return nil
	}
	current := 0
	if o.snap.SelectedExitNode != nil {
		current = *o.snap.SelectedExitNode
	}
	if index == current {
		return nil
	}

	name := ""
	if index > 0 {
		name = node.Name
	}
	stopAdvertising := o.snap.SelfExitNode

	seq := o.next(FieldExitNode)
	return []Cmd{func(ctx context.Context) Event {
		if stopAdvertising {
			if err := o.opts.Backend.AdvertiseExitNode(ctx, false); err != nil {
				return exitNodeDone{seq: seq, index: index, err: common.WrapError(err, "stop advertising")}
			}
		}
		err := o.opts.Backend.SetExitNode(ctx, name)
		return exitNodeDone{seq: seq, index: index, err: err}
	}}
}

func (o *Orchestrator) applyExitNode(ev exitNodeDone) []Cmd {
	if o.stale(FieldExitNode, ev.seq) {
		return nil
	}

	node, _ := o.snap.ExitNodeAt(ev.index)
	o.record("select-exit-node", node.Name, ev.err)

	if ev.err != nil {
		return o.fail("Failed to set exit node", ev.err)
	}

	o.snap.SelfExitNode = false
	if ev.index == 0 {
		o.snap.SelectedExitNode = nil
	} else {
		idx := ev.index
		o.snap.SelectedExitNode = &idx
	}
	if o.opts.Config != nil {
		o.opts.Config.SetExitNode(ev.index)
	}

	if ev.index == 0 {
		return append(o.info("Exit node cleared"), o.fetchCmd())
	}
	return append(o.info(fmt.Sprintf("Routing through %s", node.Name)), o.fetchCmd())
}

// Exit node advertisement, the mirror of selection: enabling while a
// node is selected clears the selection first.

func (o *Orchestrator) advertiseCmd(enable bool) []Cmd {
	if enable == o.snap.SelfExitNode {
		return nil
	}
	clearSelection := enable &&
		o.snap.SelectedExitNode != nil && *o.snap.SelectedExitNode > 0

	seq := o.next(FieldExitNode)
	return []Cmd{func(ctx context.Context) Event {
		if clearSelection {
			if err := o.opts.Backend.SetExitNode(ctx, ""); err != nil {
				return advertiseDone{seq: seq, enable: enable, err: common.WrapError(err, "clear exit node")}
			}
		}
		err := o.opts.Backend.AdvertiseExitNode(ctx, enable)
		return advertiseDone{seq: seq, enable: enable, err: err}
	}}
}

func (o *Orchestrator) applyAdvertise(ev advertiseDone) []Cmd {
	if o.stale(FieldExitNode, ev.seq) {
		return nil
	}

	o.record("advertise-exit-node", fmt.Sprintf("enable=%t", ev.enable), ev.err)

	if ev.err != nil {
		return o.fail("Failed to change exit node advertisement", ev.err)
	}

	o.snap.SelfExitNode = ev.enable
	if ev.enable {
		o.snap.SelectedExitNode = nil
		if o.opts.Config != nil {
			o.opts.Config.SetExitNode(0)
		}
	}

	if ev.enable {
		return append(o.info("Advertising as exit node"), o.fetchCmd())
	}
	return append(o.info("Stopped advertising as exit node"), o.fetchCmd())
}

// LAN access.

func (o *Orchestrator) allowLANCmd(enable bool) []Cmd {
	if o.snap.SelectedExitNode == nil || *o.snap.SelectedExitNode == 0 {
		// The flag is meaningless without an exit node in use; reject
		// without invoking the CLI.
		o.record("allow-lan", fmt.Sprintf("enable=%t", enable), common.ErrInvariant)
		return o.fail("LAN access requires an exit node", common.ErrInvariant)
	}
	if enable == o.snap.AllowLAN {
		return nil
	}

	seq := o.next(FieldLAN)
	return []Cmd{func(ctx context.Context) Event {
		err := o.opts.Backend.AllowLANAccess(ctx, enable)
		return lanDone{seq: seq, enable: enable, err: err}
	}}
}

func (o *Orchestrator) applyLAN(ev lanDone) []Cmd {
	if o.stale(FieldLAN, ev.seq) {
		return nil
	}

	o.record("allow-lan", fmt.Sprintf("enable=%t", ev.enable), ev.err)

	if ev.err != nil {
		return o.fail("Failed to change LAN access", ev.err)
	}

	o.snap.AllowLAN = ev.enable
	if o.opts.Config != nil {
		o.opts.Config.SetAllowLAN(ev.enable)
	}

	if ev.enable {
		return append(o.info("LAN access allowed"), o.fetchCmd())
	}
	return append(o.info("LAN access blocked"), o.fetchCmd())
}

// Account switching.

func (o *Orchestrator) switchAccountCmd(index int) []Cmd {
	if index < 0 || index >= len(o.snap.Accounts) {
		return nil
	}
	acct := o.snap.Accounts[index]
	if acct.Active {
		return nil
	}

	// Everything in flight belongs to the old account. Bumping every
	// counter drops those completions when they arrive.
	for _, f := range []Field{FieldFetch, FieldSSH, FieldRoutes, FieldConnection, FieldExitNode, FieldLAN} {
		o.next(f)
	}

	return []Cmd{func(ctx context.Context) Event {
		err := o.opts.Backend.SwitchAccount(ctx, acct.Label)
		return accountDone{label: acct.Label, err: err}
	}}
}

func (o *Orchestrator) applyAccount(ev accountDone) []Cmd {
	o.record("switch-account", ev.label, ev.err)

	var cmds []Cmd
	if ev.err != nil {
		cmds = o.fail("Failed to switch account", ev.err)
	} else {
		cmds = o.info(fmt.Sprintf("Switched to %s", ev.label))
	}
	// The active account may have changed even when the CLI reports an
	// error, so the refresh is unconditional.
	return append(cmds, o.fetchCmd())
}

// Taildrop. One transfer per direction at a time.

func (o *Orchestrator) sendFilesCmd(ev SendFiles) []Cmd {
	if o.sending {
		o.record("send-files", "", common.ErrTransferInFlight)
		return o.fail("Cannot send files", common.ErrTransferInFlight)
	}
	if len(ev.Paths) == 0 {
		return nil
	}
	if ev.DeviceIndex < 0 || ev.DeviceIndex >= len(o.snap.Devices) {
		return nil
	}
	device := o.snap.Devices[ev.DeviceIndex].Name
	paths := ev.Paths
	o.sending = true

	return []Cmd{func(ctx context.Context) Event {
		err := o.opts.Backend.SendFiles(ctx, paths, device)
		return sendDone{count: len(paths), device: device, err: err}
	}}
}

func (o *Orchestrator) applySend(ev sendDone) []Cmd {
	o.sending = false
	o.record("send-files", fmt.Sprintf("%d to %s", ev.count, ev.device), ev.err)

	if ev.err != nil {
		return o.fail("File transfer failed", ev.err)
	}

	text := fmt.Sprintf("Sent %d file(s) to %s", ev.count, ev.device)
	o.notify(text)
	return o.info(text)
}

func (o *Orchestrator) receiveFilesCmd() []Cmd {
	if o.receiving {
		o.record("receive-files", "", common.ErrTransferInFlight)
		return o.fail("Cannot receive files", common.ErrTransferInFlight)
	}
	if o.opts.DownloadDir == "" {
		return o.fail("File receive failed", errors.New("no download directory"))
	}
	o.receiving = true
	dir := o.opts.DownloadDir

	return []Cmd{func(ctx context.Context) Event {
		rctx, cancel := context.WithTimeout(ctx, common.ReceiveTimeout)
		defer cancel()
		return recvDone{err: o.opts.Backend.ReceiveFiles(rctx, dir)}
	}}
}

func (o *Orchestrator) applyReceive(ev recvDone) []Cmd {
	o.receiving = false
	o.record("receive-files", o.opts.DownloadDir, ev.err)

	if ev.err != nil {
		return o.fail("File receive failed", ev.err)
	}

	text := "Files saved to " + o.opts.DownloadDir
	o.notify(text)
	return o.info(text)
}

// Status handling. Every message gets a fresh token and its own expiry
// command; an expiry for a replaced message is ignored.

func (o *Orchestrator) setStatus(text string, severity Severity) []Cmd {
	token := uuid.New()
	o.status = &StatusMessage{Text: text, Severity: severity, Token: token}

	return []Cmd{func(ctx context.Context) Event {
		select {
		case <-ctx.Done():
			return nil
		case <-o.opts.Clock.After(common.StatusClearDelay):
			return statusExpired{token: token}
		}
	}}
}

func (o *Orchestrator) info(text string) []Cmd {
	return o.setStatus(text, SeverityInfo)
}

func (o *Orchestrator) fail(text string, err error) []Cmd {
	common.LogError("%s: %v", text, err)
	if o.opts.Notifier != nil {
		if nerr := o.opts.Notifier.NotifyError(common.AppName, text); nerr != nil {
			common.LogWarn("Failed to send notification: %v", nerr)
		}
	}
	return o.setStatus(fmt.Sprintf("%s: %v", text, errorSummary(err)), SeverityError)
}

func (o *Orchestrator) notify(text string) {
	if o.opts.Notifier == nil {
		return
	}
	if err := o.opts.Notifier.Notify(common.AppName, text); err != nil {
		common.LogWarn("Failed to send notification: %v", err)
	}
}

func (o *Orchestrator) record(op, detail string, err error) {
	if o.opts.Recorder == nil {
		return
	}
	o.opts.Recorder.Record(op, detail, err)
}

// errorSummary prefers the CLI's stderr over Go error chains, which
// read poorly in a status line.
func errorSummary(err error) string {
	var execErr *common.ExecError
	if errors.As(err, &execErr) && execErr.Stderr != "" {
		return execErr.Stderr
	}
	return err.Error()
}
