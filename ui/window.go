package ui

import (
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"

	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/orchestrator"
	"github.com/tailtray/tailtray/tailscale"
)

// MainWindow is the control window. Widgets never flip on click; every
// control posts an intent and waits for the orchestrator to render the
// confirmed state back.
type MainWindow struct {
	app    *Application
	window *gtk.ApplicationWindow

	stateLabel *gtk.Label
	ipLabel    *gtk.Label

	connSwitch      *gtk.Switch
	sshSwitch       *gtk.Switch
	routesSwitch    *gtk.Switch
	advertiseSwitch *gtk.Switch
	lanSwitch       *gtk.Switch

	exitNodeDrop *gtk.DropDown
	accountDrop  *gtk.DropDown
	deviceDrop   *gtk.DropDown

	sendButton    *gtk.Button
	receiveButton *gtk.Button
	statusLabel   *gtk.Label

	// applying suppresses widget signals while a render is in
	// progress, so confirmed state does not echo back as new intents.
	applying bool

	exitNodeNames []string
	accountNames  []string
	deviceNames   []string
}

// NewMainWindow creates the control window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{app: app}

	mw.window = gtk.NewApplicationWindow(app.app)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetResizable(false)
	mw.window.SetIconName("tailtray")

	// Closing hides to the tray; the applet keeps running.
	mw.window.SetHideOnClose(true)

	mw.createLayout()
	return mw
}

// Show presents the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

func (mw *MainWindow) createLayout() {
	header := gtk.NewHeaderBar()

	refreshButton := gtk.NewButton()
	refreshButton.SetIconName("view-refresh-symbolic")
	refreshButton.SetTooltipText("Refresh state")
	refreshButton.ConnectClicked(func() {
		mw.app.Post(orchestrator.Refresh{})
	})
	header.PackStart(refreshButton)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetMenuModel(mw.createMenu())
	header.PackEnd(menuButton)

	mw.window.SetTitlebar(header)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 0)

	content := gtk.NewBox(gtk.OrientationVertical, 18)
	content.SetMarginTop(18)
	content.SetMarginBottom(12)
	content.SetMarginStart(24)
	content.SetMarginEnd(24)
	content.SetVExpand(true)

	content.Append(mw.buildConnectionSection())
	content.Append(mw.buildSettingsSection())
	content.Append(mw.buildExitNodeSection())
	content.Append(mw.buildAccountSection())
	content.Append(mw.buildTaildropSection())

	mainBox.Append(content)
	mainBox.Append(mw.buildStatusBar())

	mw.window.SetChild(mainBox)
}

func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()
	menu.Append("About", "app.about")
	menu.Append("Quit", "app.quit")

	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.showAbout()
	})
	mw.app.app.AddAction(aboutAction)

	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(_ *glib.Variant) {
		mw.app.Quit()
	})
	mw.app.app.AddAction(quitAction)
	mw.app.app.SetAccelsForAction("app.quit", []string{"<Control>q"})

	return menu
}

func sectionLabel(text string) *gtk.Label {
	lbl := gtk.NewLabel(text)
	lbl.SetXAlign(0)
	lbl.AddCSSClass("heading")
	return lbl
}

func switchRow(title string, sw *gtk.Switch) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	lbl := gtk.NewLabel(title)
	lbl.SetXAlign(0)
	lbl.SetHExpand(true)
	sw.SetVAlign(gtk.AlignCenter)
	row.Append(lbl)
	row.Append(sw)
	return row
}

func (mw *MainWindow) buildConnectionSection() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 6)

	mw.stateLabel = gtk.NewLabel("Unknown")
	mw.stateLabel.SetXAlign(0)
	mw.stateLabel.AddCSSClass("title-2")

	mw.ipLabel = gtk.NewLabel("")
	mw.ipLabel.SetXAlign(0)
	mw.ipLabel.AddCSSClass("dim-label")

	mw.connSwitch = gtk.NewSwitch()
	mw.connSwitch.ConnectStateSet(func(state bool) bool {
		if mw.applying {
			return false
		}
		mw.app.Post(orchestrator.SetConnection{Up: state})
		return true
	})

	header := gtk.NewBox(gtk.OrientationHorizontal, 12)
	labels := gtk.NewBox(gtk.OrientationVertical, 2)
	labels.SetHExpand(true)
	labels.Append(mw.stateLabel)
	labels.Append(mw.ipLabel)
	mw.connSwitch.SetVAlign(gtk.AlignCenter)
	header.Append(labels)
	header.Append(mw.connSwitch)

	box.Append(header)
	return box
}

func (mw *MainWindow) buildSettingsSection() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.Append(sectionLabel("Settings"))

	mw.sshSwitch = gtk.NewSwitch()
	mw.sshSwitch.ConnectStateSet(func(state bool) bool {
		if mw.applying {
			return false
		}
		mw.app.Post(orchestrator.ToggleSSH{Enable: state})
		return true
	})
	box.Append(switchRow("Tailscale SSH", mw.sshSwitch))

	mw.routesSwitch = gtk.NewSwitch()
	mw.routesSwitch.ConnectStateSet(func(state bool) bool {
		if mw.applying {
			return false
		}
		mw.app.Post(orchestrator.ToggleRoutes{Enable: state})
		return true
	})
	box.Append(switchRow("Accept routes", mw.routesSwitch))

	return box
}

func (mw *MainWindow) buildExitNodeSection() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.Append(sectionLabel("Exit node"))

	mw.exitNodeDrop = gtk.NewDropDownFromStrings([]string{tailscale.NoExitNodeLabel})
	mw.exitNodeDrop.NotifyProperty("selected", func() {
		if mw.applying {
			return
		}
		mw.app.Post(orchestrator.SelectExitNode{Index: int(mw.exitNodeDrop.Selected())})
	})

	dropRow := gtk.NewBox(gtk.OrientationHorizontal, 12)
	dropLabel := gtk.NewLabel("Use exit node")
	dropLabel.SetXAlign(0)
	dropLabel.SetHExpand(true)
	dropRow.Append(dropLabel)
	dropRow.Append(mw.exitNodeDrop)
	box.Append(dropRow)

	mw.advertiseSwitch = gtk.NewSwitch()
	mw.advertiseSwitch.ConnectStateSet(func(state bool) bool {
		if mw.applying {
			return false
		}
		mw.app.Post(orchestrator.AdvertiseSelf{Enable: state})
		return true
	})
	box.Append(switchRow("Advertise as exit node", mw.advertiseSwitch))

	mw.lanSwitch = gtk.NewSwitch()
	mw.lanSwitch.ConnectStateSet(func(state bool) bool {
		if mw.applying {
			return false
		}
		mw.app.Post(orchestrator.AllowLAN{Enable: state})
		return true
	})
	box.Append(switchRow("Allow LAN access", mw.lanSwitch))

	return box
}

func (mw *MainWindow) buildAccountSection() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.Append(sectionLabel("Account"))

	mw.accountDrop = gtk.NewDropDownFromStrings([]string{})
	mw.accountDrop.NotifyProperty("selected", func() {
		if mw.applying {
			return
		}
		mw.app.Post(orchestrator.SwitchAccount{Index: int(mw.accountDrop.Selected())})
	})
	box.Append(mw.accountDrop)

	return box
}

func (mw *MainWindow) buildTaildropSection() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.Append(sectionLabel("Taildrop"))

	mw.deviceDrop = gtk.NewDropDownFromStrings([]string{})

	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	mw.deviceDrop.SetHExpand(true)
	row.Append(mw.deviceDrop)

	mw.sendButton = gtk.NewButtonWithLabel("Send files…")
	mw.sendButton.ConnectClicked(mw.onSendFiles)
	row.Append(mw.sendButton)
	box.Append(row)

	mw.receiveButton = gtk.NewButtonWithLabel("Receive files")
	mw.receiveButton.ConnectClicked(func() {
		mw.app.Post(orchestrator.ReceiveFiles{})
	})
	box.Append(mw.receiveButton)

	return box
}

func (mw *MainWindow) buildStatusBar() *gtk.Box {
	bar := gtk.NewBox(gtk.OrientationHorizontal, 0)
	bar.AddCSSClass("toolbar")

	mw.statusLabel = gtk.NewLabel("")
	mw.statusLabel.SetXAlign(0)
	mw.statusLabel.SetMarginTop(6)
	mw.statusLabel.SetMarginBottom(6)
	mw.statusLabel.SetMarginStart(12)
	mw.statusLabel.SetMarginEnd(12)
	mw.statusLabel.SetEllipsize(pango.EllipsizeMiddle)
	bar.Append(mw.statusLabel)

	return bar
}

// onSendFiles opens a multi-file chooser and posts the selection to
// the orchestrator targeted at the currently chosen device.
func (mw *MainWindow) onSendFiles() {
	dialog := gtk.NewFileChooserNative(
		"Send files via Taildrop",
		&mw.window.Window,
		gtk.FileChooserActionOpen,
		"Send",
		"Cancel",
	)
	dialog.SetSelectMultiple(true)

	dialog.ConnectResponse(func(responseID int) {
		if responseID == int(gtk.ResponseAccept) {
			files := dialog.Files()
			var paths []string
			for i := uint(0); i < files.NItems(); i++ {
				if f, ok := files.Item(i).Cast().(gio.Filer); ok {
					paths = append(paths, f.Path())
				}
			}
			if len(paths) > 0 {
				mw.app.Post(orchestrator.SendFiles{
					Paths:       paths,
					DeviceIndex: int(mw.deviceDrop.Selected()),
				})
			}
		}
		dialog.Destroy()
	})

	dialog.Show()
}

// Apply renders a state view. Must run on the GTK main thread.
func (mw *MainWindow) Apply(v orchestrator.View) {
	mw.applying = true
	defer func() { mw.applying = false }()

	snap := v.Snap

	mw.stateLabel.SetText(snap.Conn.String())
	if snap.IP != "" {
		mw.ipLabel.SetText(snap.IP)
	} else {
		mw.ipLabel.SetText("No address")
	}

	mw.connSwitch.SetState(snap.Conn == tailscale.StateRunning)
	mw.connSwitch.SetActive(snap.Conn == tailscale.StateRunning)
	mw.sshSwitch.SetState(snap.SSH)
	mw.sshSwitch.SetActive(snap.SSH)
	mw.routesSwitch.SetState(snap.AcceptRoutes)
	mw.routesSwitch.SetActive(snap.AcceptRoutes)
	mw.advertiseSwitch.SetState(snap.SelfExitNode)
	mw.advertiseSwitch.SetActive(snap.SelfExitNode)
	mw.lanSwitch.SetState(snap.AllowLAN)
	mw.lanSwitch.SetActive(snap.AllowLAN)

	mw.applyExitNodes(snap)
	mw.applyAccounts(snap)
	mw.applyDevices(snap)

	mw.sendButton.SetSensitive(!v.Sending && len(snap.Devices) > 0)
	mw.receiveButton.SetSensitive(!v.Receiving)

	if v.Status != nil {
		mw.statusLabel.SetText(v.Status.Text)
		if v.Status.Severity == orchestrator.SeverityError {
			mw.statusLabel.AddCSSClass("error")
		} else {
			mw.statusLabel.RemoveCSSClass("error")
		}
	} else {
		mw.statusLabel.SetText("")
		mw.statusLabel.RemoveCSSClass("error")
	}
}

func (mw *MainWindow) applyExitNodes(snap tailscale.Snapshot) {
	names := make([]string, len(snap.ExitNodes))
	for i, n := range snap.ExitNodes {
		names[i] = n.Name
	}
	if !equalStrings(names, mw.exitNodeNames) {
		mw.exitNodeNames = names
		mw.exitNodeDrop.SetModel(gtk.NewStringList(names))
	}

	selected := uint(0)
	if snap.SelectedExitNode != nil {
		selected = uint(*snap.SelectedExitNode)
	}
	if mw.exitNodeDrop.Selected() != selected {
		mw.exitNodeDrop.SetSelected(selected)
	}
	mw.exitNodeDrop.SetSensitive(!snap.SelfExitNode)
}

func (mw *MainWindow) applyAccounts(snap tailscale.Snapshot) {
	names := make([]string, len(snap.Accounts))
	active := uint(0)
	for i, a := range snap.Accounts {
		names[i] = a.Label
		if a.Active {
			active = uint(i)
		}
	}
	if !equalStrings(names, mw.accountNames) {
		mw.accountNames = names
		mw.accountDrop.SetModel(gtk.NewStringList(names))
	}
	if len(names) > 0 && mw.accountDrop.Selected() != active {
		mw.accountDrop.SetSelected(active)
	}
	mw.accountDrop.SetSensitive(len(names) > 1)
}

func (mw *MainWindow) applyDevices(snap tailscale.Snapshot) {
	names := make([]string, len(snap.Devices))
	for i, d := range snap.Devices {
		label := d.Name
		if !d.Online {
			label += " (offline)"
		}
		names[i] = label
	}
	if !equalStrings(names, mw.deviceNames) {
		mw.deviceNames = names
		mw.deviceDrop.SetModel(gtk.NewStringList(names))
	}
}

func (mw *MainWindow) showAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)
	about.SetProgramName(common.AppName)
	about.SetVersion(mw.app.Version())
	about.SetComments("Tailscale control applet for the system tray")
	about.SetLogoIconName("tailtray")
	about.Show()
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
