// Package tui provides a terminal interface over the orchestrator, for
// running the applet in a shell instead of a desktop session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tailtray/tailtray/orchestrator"
	"github.com/tailtray/tailtray/tailscale"
)

// Poster feeds user intents into the orchestrator.
type Poster interface {
	Post(ev orchestrator.Event)
}

// viewMsg carries a rendered state view into the bubbletea loop.
type viewMsg orchestrator.View

// Model is the bubbletea model. Like the GTK window it never mutates
// state itself: keys post intents, and the display follows the views
// the orchestrator renders.
type Model struct {
	poster Poster
	views  <-chan orchestrator.View

	view     orchestrator.View
	keys     keyMap
	styles   Styles
	help     help.Model
	spin     spinner.Model
	cursor   int
	showHelp bool
	width    int
}

// NewModel creates a model reading views from the given channel.
func NewModel(poster Poster, views <-chan orchestrator.View) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		poster: poster,
		views:  views,
		keys:   DefaultKeyMap(),
		styles: DefaultStyles(),
		help:   help.New(),
		spin:   sp,
	}
}

// Run blocks until the user quits or ctx is cancelled. The views
// channel must be fed by the orchestrator's render callback.
func Run(ctx context.Context, poster Poster, views <-chan orchestrator.View) error {
	p := tea.NewProgram(NewModel(poster, views), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) waitForView() tea.Cmd {
	return func() tea.Msg {
		v, ok := <-m.views
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.waitForView())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case viewMsg:
		m.view = orchestrator.View(msg)
		if max := len(m.view.Snap.ExitNodes) - 1; m.cursor > max {
			m.cursor = 0
		}
		return m, m.waitForView()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.view.Snap

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.Refresh):
		m.poster.Post(orchestrator.Refresh{})
	case key.Matches(msg, m.keys.Dismiss):
		m.poster.Post(orchestrator.DismissStatus{})

	case key.Matches(msg, m.keys.Connect):
		m.poster.Post(orchestrator.SetConnection{Up: snap.Conn != tailscale.StateRunning})
	case key.Matches(msg, m.keys.SSH):
		m.poster.Post(orchestrator.ToggleSSH{Enable: !snap.SSH})
	case key.Matches(msg, m.keys.Routes):
		m.poster.Post(orchestrator.ToggleRoutes{Enable: !snap.AcceptRoutes})

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(snap.ExitNodes)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		m.poster.Post(orchestrator.SelectExitNode{Index: m.cursor})
	case key.Matches(msg, m.keys.Advertise):
		m.poster.Post(orchestrator.AdvertiseSelf{Enable: !snap.SelfExitNode})
	case key.Matches(msg, m.keys.LAN):
		m.poster.Post(orchestrator.AllowLAN{Enable: !snap.AllowLAN})

	case key.Matches(msg, m.keys.Account):
		if next, ok := nextAccount(snap.Accounts); ok {
			m.poster.Post(orchestrator.SwitchAccount{Index: next})
		}
	case key.Matches(msg, m.keys.Receive):
		m.poster.Post(orchestrator.ReceiveFiles{})
	}
	return m, nil
}

// nextAccount returns the index after the active account, wrapping.
func nextAccount(accounts []tailscale.Account) (int, bool) {
	if len(accounts) < 2 {
		return 0, false
	}
	for i, a := range accounts {
		if a.Active {
			return (i + 1) % len(accounts), true
		}
	}
	return 0, true
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	snap := m.view.Snap
	s := m.styles

	b.WriteString(s.Title.Render("Tailtray"))
	b.WriteString("  ")
	b.WriteString(m.renderConn(snap))
	b.WriteString("\n")

	if snap.IP != "" {
		b.WriteString(s.Muted.Render(snap.IP))
		b.WriteString("\n")
	}
	if account := snap.CurrentAccount(); account != "" {
		b.WriteString(s.Muted.Render("Account: " + account))
		b.WriteString("\n")
	}

	b.WriteString(s.Section.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(m.renderToggle("SSH", snap.SSH))
	b.WriteString(m.renderToggle("Accept routes", snap.AcceptRoutes))
	b.WriteString(m.renderToggle("Advertise exit node", snap.SelfExitNode))
	b.WriteString(m.renderToggle("Allow LAN access", snap.AllowLAN))

	b.WriteString(s.Section.Render("Exit nodes"))
	b.WriteString("\n")
	m.renderExitNodes(&b, snap)

	if len(snap.Devices) > 0 {
		b.WriteString(s.Section.Render("Devices"))
		b.WriteString("\n")
		for _, d := range snap.Devices {
			line := fmt.Sprintf("  %-20s %s", d.Name, d.Addr)
			if d.Online {
				b.WriteString(s.Value.Render(line))
			} else {
				b.WriteString(s.Muted.Render(line + "  offline"))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return b.String()
}

func (m Model) renderConn(snap tailscale.Snapshot) string {
	switch snap.Conn {
	case tailscale.StateRunning:
		return m.styles.On.Render("● Connected")
	case tailscale.StateStarting:
		return m.styles.Muted.Render(m.spin.View() + " Starting")
	default:
		return m.styles.Off.Render("○ " + snap.Conn.String())
	}
}

func (m Model) renderToggle(name string, on bool) string {
	state := m.styles.Off.Render("off")
	if on {
		state = m.styles.On.Render("on ")
	}
	return fmt.Sprintf("  %s  %s\n", state, m.styles.Value.Render(name))
}

func (m Model) renderExitNodes(b *strings.Builder, snap tailscale.Snapshot) {
	selected := -1
	if snap.SelectedExitNode != nil {
		selected = *snap.SelectedExitNode
	} else if !snap.SelfExitNode {
		selected = 0
	}

	for i, node := range snap.ExitNodes {
		cursor := "  "
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		label := node.Name
		if i == selected {
			label = m.styles.Selected.Render(label + " ✓")
		} else {
			label = m.styles.Value.Render(label)
		}
		b.WriteString(cursor + label + "\n")
	}
	if snap.SelfExitNode {
		b.WriteString(m.styles.Selected.Render("  this device is the exit node"))
		b.WriteString("\n")
	}
}

func (m Model) renderStatus() string {
	if m.view.Sending || m.view.Receiving {
		verb := "Sending"
		if m.view.Receiving {
			verb = "Receiving"
		}
		return m.spin.View() + " " + m.styles.Muted.Render(verb+" files…")
	}
	if st := m.view.Status; st != nil {
		if st.Severity == orchestrator.SeverityError {
			return m.styles.Error.Render(st.Text)
		}
		return m.styles.Info.Render(st.Text)
	}
	return ""
}
