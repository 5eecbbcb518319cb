// Package ui provides the graphical user interface for Tailtray.
// This file contains the system tray indicator functionality.
package ui

import (
	"fmt"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/orchestrator"
	"github.com/tailtray/tailtray/tailscale"
)

// Pre-generated icons for performance.
var (
	iconConnected    = GenerateConnectedIcon()
	iconDisconnected = GenerateDisconnectedIcon()
)

// TrayIndicator manages the system tray icon and menu. It mirrors the
// rendered state and offers the most common actions without opening
// the window.
type TrayIndicator struct {
	app *Application

	statusItem   *systray.MenuItem
	ipItem       *systray.MenuItem
	exitNodeItem *systray.MenuItem
	connectItem  *systray.MenuItem
	ready        bool
	connected    bool
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{app: app}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayIndicator) onReady() {
	systray.SetIcon(iconDisconnected)
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName + " - Disconnected")

	t.statusItem = systray.AddMenuItem("Unknown", "Connection state")
	t.statusItem.Disable()

	t.ipItem = systray.AddMenuItem("IP: ---", "Tailnet address")
	t.ipItem.Disable()

	t.exitNodeItem = systray.AddMenuItem("Exit node: none", "Active exit node")
	t.exitNodeItem.Disable()

	systray.AddSeparator()

	t.connectItem = systray.AddMenuItem("Connect", "Toggle the connection")
	go func() {
		for range t.connectItem.ClickedCh {
			t.app.Post(orchestrator.SetConnection{Up: !t.connected})
		}
	}()

	systray.AddSeparator()

	showItem := systray.AddMenuItem("Open "+common.AppName, "Show the control window")
	go func() {
		for range showItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.showWindow()
			})
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			glib.IdleAdd(func() {
				t.app.Quit()
			})
			systray.Quit()
		}
	}()

	t.ready = true
	// Pull current state into the fresh menu.
	t.app.Post(orchestrator.Refresh{})
}

func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator stopped")
}

// Apply renders a state view into the tray menu. Must run on the GTK
// main thread alongside the window render.
func (t *TrayIndicator) Apply(v orchestrator.View) {
	if !t.ready {
		return
	}

	snap := v.Snap
	t.connected = snap.Conn == tailscale.StateRunning

	t.statusItem.SetTitle(snap.Conn.String())

	if snap.IP != "" {
		t.ipItem.SetTitle("IP: " + snap.IP)
	} else {
		t.ipItem.SetTitle("IP: ---")
	}

	exitNode := "none"
	if snap.SelfExitNode {
		exitNode = "this device"
	} else if snap.SelectedExitNode != nil && *snap.SelectedExitNode > 0 {
		if node, ok := snap.ExitNodeAt(*snap.SelectedExitNode); ok {
			exitNode = node.Name
		}
	}
	t.exitNodeItem.SetTitle("Exit node: " + exitNode)

	if t.connected {
		systray.SetIcon(iconConnected)
		systray.SetTooltip(fmt.Sprintf("%s - Connected (%s)", common.AppName, snap.IP))
		t.connectItem.SetTitle("Disconnect")
	} else {
		systray.SetIcon(iconDisconnected)
		systray.SetTooltip(common.AppName + " - " + snap.Conn.String())
		t.connectItem.SetTitle("Connect")
	}
}
