// Package tailscale drives the external tailscale CLI.
// This file contains the Client, the typed wrappers around mutating
// subcommands.
package tailscale

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Client issues mutating commands against the tailscale CLI. It holds
// no state; the orchestrator decides when commands run and how their
// results are applied.
type Client struct {
	runner Runner
}

// NewClient creates a client over the given runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// setFlag toggles one `tailscale set` boolean flag.
func (c *Client) setFlag(ctx context.Context, flag string, enabled bool) error {
	value := "--" + flag
	if !enabled {
		value = "--" + flag + "=false"
	}
	_, err := c.runner.Run(ctx, "set", value)
	return err
}

// SetSSH enables or disables the tailscale SSH server.
func (c *Client) SetSSH(ctx context.Context, enabled bool) error {
	return c.setFlag(ctx, "ssh", enabled)
}

// SetAcceptRoutes enables or disables accepting advertised subnet routes.
func (c *Client) SetAcceptRoutes(ctx context.Context, enabled bool) error {
	return c.setFlag(ctx, "accept-routes", enabled)
}

// Up brings the connection up. A non-empty authKey is passed through
// for unattended login.
func (c *Client) Up(ctx context.Context, authKey string) error {
	args := []string{"up"}
	if authKey != "" {
		args = append(args, "--auth-key="+authKey)
	}
	_, err := c.runner.Run(ctx, args...)
	return err
}

// Down takes the connection down.
func (c *Client) Down(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "down")
	return err
}

// SetExitNode routes traffic through the named node. An empty name
// clears the selection.
func (c *Client) SetExitNode(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, "set", "--exit-node="+name)
	return err
}

// AdvertiseExitNode starts or stops advertising this host as an exit
// node. The flag only takes effect on a running backend, so a
// successful set is followed by `up`.
func (c *Client) AdvertiseExitNode(ctx context.Context, enabled bool) error {
	_, err := c.runner.Run(ctx, "set", "--advertise-exit-node="+strconv.FormatBool(enabled))
	if err != nil {
		return err
	}
	_, err = c.runner.Run(ctx, "up")
	return err
}

// AllowLANAccess keeps LAN access while routing through an exit node.
func (c *Client) AllowLANAccess(ctx context.Context, allowed bool) error {
	_, err := c.runner.Run(ctx, "set", "--exit-node-allow-lan-access="+strconv.FormatBool(allowed))
	return err
}

// SwitchAccount changes the active login. Every cached field belongs to
// the now-active account afterward, so callers must re-fetch.
func (c *Client) SwitchAccount(ctx context.Context, label string) error {
	_, err := c.runner.Run(ctx, "switch", label)
	return err
}

// SendFiles copies each path to the target device via Taildrop. All
// paths are attempted; failures are joined into one error.
func (c *Client) SendFiles(ctx context.Context, paths []string, target string) error {
	var errs []error
	for _, path := range paths {
		if _, err := c.runner.Run(ctx, "file", "cp", path, target+":"); err != nil {
			errs = append(errs, fmt.Errorf("send %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// ReceiveFiles moves pending Taildrop inbox files into dir. The call
// blocks until files arrive or the context deadline passes.
func (c *Client) ReceiveFiles(ctx context.Context, dir string) error {
	_, err := c.runner.Run(ctx, "file", "get", dir)
	return err
}
