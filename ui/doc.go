// Package ui provides the graphical user interface for Tailtray.
//
// The UI is a thin projection of orchestrator state. Controls never
// change their own appearance on interaction: a click posts an intent
// to the orchestrator, and the widget updates only when a confirmed
// state view is rendered back. Renders arrive on the orchestrator
// goroutine and are marshalled onto the GTK main thread with
// glib.IdleAdd.
//
// The package contains:
//   - Application: GTK application lifecycle and render bridging
//   - MainWindow: the control window with switches and drop-downs
//   - TrayIndicator: the system tray icon and quick-action menu
//   - icon generation for the tray's connected/disconnected states
package ui
