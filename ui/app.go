package ui

import (
	"context"
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/config"
	"github.com/tailtray/tailtray/orchestrator"
)

// Application ties the GTK application, the tray indicator, and the
// orchestrator together.
type Application struct {
	app     *gtk.Application
	window  *MainWindow
	tray    *TrayIndicator
	orch    *orchestrator.Orchestrator
	config  *config.Config
	version string

	cancel context.CancelFunc
}

// NewApplication creates the GTK application around an orchestrator.
// The orchestrator's render callback must be wired to Render before
// its loop starts.
func NewApplication(orch *orchestrator.Orchestrator, cfg *config.Config, version string) *Application {
	app := gtk.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	a := &Application{
		app:     app,
		orch:    orch,
		config:  cfg,
		version: version,
	}
	app.ConnectActivate(a.onActivate)
	return a
}

// Run starts the orchestrator loop and the GTK main loop. It blocks
// until the application quits.
func (a *Application) Run(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.orch.Run(ctx)

	code := a.app.Run(args)
	cancel()
	return code
}

// Render applies a state view. It is called from the orchestrator
// goroutine, so all widget access hops onto the GTK main thread.
func (a *Application) Render(v orchestrator.View) {
	glib.IdleAdd(func() {
		if a.window != nil {
			a.window.Apply(v)
		}
		if a.tray != nil {
			a.tray.Apply(v)
		}
	})
}

func (a *Application) onActivate() {
	a.applyTheme(a.config.Theme)
	a.setupAppIcon()

	a.window = NewMainWindow(a)
	a.window.Show()

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()
}

// Post forwards a user intent to the orchestrator.
func (a *Application) Post(ev orchestrator.Event) {
	a.orch.Post(ev)
}

func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}
	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	// GTK4 looks for theme subdirectories inside these paths.
	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}
	if cwd, err := os.Getwd(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(cwd, "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName("tailtray")
}

// applyTheme applies the configured color theme.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) applyTheme(theme string) {
	settings := gtk.SettingsGetDefault()
	if settings == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", false)
	case common.ThemeDark:
		settings.SetObjectProperty("gtk-application-prefer-dark-theme", true)
	default:
		// "auto": follow the system color scheme
	}
}

// Version returns the application version string.
func (a *Application) Version() string {
	return a.version
}

func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application.
func (a *Application) Quit() {
	if a.cancel != nil {
		a.cancel()
	}
	a.app.Quit()
}
