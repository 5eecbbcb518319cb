// Package cli provides command-line functionality for Tailtray. It
// lets users inspect and control the connection from a terminal
// without launching the applet.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/tailtray/tailtray/common"
	"github.com/tailtray/tailtray/history"
	"github.com/tailtray/tailtray/keyring"
	"github.com/tailtray/tailtray/tailscale"
)

// CLI represents the command-line interface.
type CLI struct {
	fetcher *tailscale.Fetcher
	client  *tailscale.Client
	store   *keyring.Store
}

// New creates a new CLI instance.
func New() (*CLI, error) {
	runner := tailscale.NewCLIRunner()

	store, err := keyring.NewStore()
	if err != nil {
		// Credential storage is optional for most commands.
		common.LogWarn("Credential storage unavailable: %v", err)
		store = nil
	}

	return &CLI{
		fetcher: tailscale.NewFetcher(runner),
		client:  tailscale.NewClient(runner),
		store:   store,
	}, nil
}

// Status prints the current connection state and peer devices.
func (c *CLI) Status(ctx context.Context) error {
	snap := c.fetcher.Fetch(ctx)

	fmt.Printf("State:    %s\n", snap.Conn)
	ip := snap.IP
	if ip == "" {
		ip = "-"
	}
	fmt.Printf("Address:  %s\n", ip)
	if snap.DNSName != "" {
		fmt.Printf("Host:     %s\n", snap.DNSName)
	}

	if account := snap.CurrentAccount(); account != "" {
		fmt.Printf("Account:  %s\n", account)
	}

	exitNode := "none"
	if snap.SelfExitNode {
		exitNode = "this device"
	} else if snap.SelectedExitNode != nil && *snap.SelectedExitNode > 0 {
		if node, ok := snap.ExitNodeAt(*snap.SelectedExitNode); ok {
			exitNode = node.Name
		}
	}
	fmt.Printf("Exit node: %s\n", exitNode)

	flags := []string{}
	if snap.SSH {
		flags = append(flags, "ssh")
	}
	if snap.AcceptRoutes {
		flags = append(flags, "accept-routes")
	}
	if len(flags) > 0 {
		fmt.Printf("Flags:    %s\n", strings.Join(flags, ", "))
	}

	if len(snap.Devices) == 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEVICE\tADDRESS\tSTATE")
	fmt.Fprintln(w, "------\t-------\t-----")
	for _, d := range snap.Devices {
		state := "offline"
		if d.Online {
			state = "online"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Addr, state)
	}
	w.Flush()
	return nil
}

// Up brings the connection up, using a stored auth key when present.
func (c *CLI) Up(ctx context.Context) error {
	authKey := ""
	if c.store != nil {
		authKey = c.store.AuthKey()
	}

	fmt.Println("Connecting...")
	if err := c.client.Up(ctx, authKey); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Println("✓ Connected")
	return nil
}

// Down takes the connection down.
func (c *CLI) Down(ctx context.Context) error {
	fmt.Println("Disconnecting...")
	if err := c.client.Down(ctx); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}
	fmt.Println("✓ Disconnected")
	return nil
}

// ExitNode routes traffic through the named node, or clears the
// selection when name is "off".
func (c *CLI) ExitNode(ctx context.Context, name string) error {
	target := name
	if strings.EqualFold(name, "off") {
		target = ""
	}

	if err := c.client.SetExitNode(ctx, target); err != nil {
		return fmt.Errorf("failed to set exit node: %w", err)
	}

	if target == "" {
		fmt.Println("✓ Exit node cleared")
	} else {
		fmt.Printf("✓ Routing through %s\n", target)
	}
	return nil
}

// History prints recent operations from the audit log.
func (c *CLI) History(limit int) error {
	log, err := history.Open()
	if err != nil {
		return err
	}
	defer log.Close()

	entries, err := log.Recent(limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No recorded operations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tOPERATION\tDETAIL\tRESULT")
	fmt.Fprintln(w, "----\t---------\t------\t------")
	for _, e := range entries {
		result := "ok"
		if !e.OK {
			result = e.Error
		}
		detail := e.Detail
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Time.Format("2006-01-02 15:04:05"), e.Op, detail, result)
	}
	w.Flush()
	return nil
}

// SetAuthKey prompts for an auth key and stores it in the keyring.
// The key is read without terminal echo.
func (c *CLI) SetAuthKey() error {
	if c.store == nil {
		return common.ErrCredentialStorage
	}

	fmt.Print("Auth key: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read auth key: %w", err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return fmt.Errorf("auth key cannot be empty")
	}

	if err := c.store.SetAuthKey(key); err != nil {
		return err
	}
	fmt.Println("✓ Auth key stored")
	return nil
}

// PrintHelp prints CLI usage help.
func PrintHelp() {
	fmt.Println(`Tailtray - Tailscale tray applet

Usage:
  tailtray [OPTIONS]

Options:
  --version          Show version and exit
  --verbose          Enable verbose logging
  --tui              Run the terminal interface instead of the GUI
  --status           Show connection status
  --up               Bring the connection up
  --down             Take the connection down
  --exit-node NAME   Route through an exit node ("off" to clear)
  --history          Show recent operations
  --set-auth-key     Store an auth key for unattended login
  --help             Show this help message

Examples:
  tailtray --status
  tailtray --exit-node us-nyc-1
  tailtray --exit-node off
  tailtray --tui

Notes:
  - Requires the tailscale CLI to be installed
  - Run without options to launch the tray applet`)
}
