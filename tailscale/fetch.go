// Package tailscale drives the external tailscale CLI.
// This file contains the Fetcher, which assembles one Snapshot from a
// batch of concurrent read-only CLI invocations.
package tailscale

import (
	"context"
	"sync"

	"github.com/tailtray/tailtray/common"
)

// NoExitNodeLabel is the placeholder occupying index 0 of the exit-node
// list, meaning "route directly".
const NoExitNodeLabel = "None"

// Fetcher produces state snapshots from the current CLI state.
type Fetcher struct {
	runner Runner
}

// NewFetcher creates a fetcher over the given runner.
func NewFetcher(runner Runner) *Fetcher {
	return &Fetcher{runner: runner}
}

// Fetch issues all read-only sub-queries concurrently and assembles one
// snapshot. A single sub-query failing does not fail the fetch: the
// affected field falls back to its default and is logged, because a
// managed device may have partial functionality without that being a
// whole-application failure.
func (f *Fetcher) Fetch(ctx context.Context) Snapshot {
	var (
		wg sync.WaitGroup

		prefsOut, prefsErr           = "", error(nil)
		statusOut, statusErr         = "", error(nil)
		statusJSONOut, statusJSONErr = "", error(nil)
		exitOut, exitErr             = "", error(nil)
		acctOut, acctErr             = "", error(nil)
		ipOut, ipErr                 = "", error(nil)
	)

	queries := []struct {
		args []string
		out  *string
		err  *error
	}{
		{[]string{"debug", "prefs"}, &prefsOut, &prefsErr},
		{[]string{"status"}, &statusOut, &statusErr},
		{[]string{"status", "--json"}, &statusJSONOut, &statusJSONErr},
		{[]string{"exit-node", "list"}, &exitOut, &exitErr},
		{[]string{"switch", "--list"}, &acctOut, &acctErr},
		{[]string{"ip", "-4"}, &ipOut, &ipErr},
	}

	for _, q := range queries {
		wg.Add(1)
		go func(args []string, out *string, err *error) {
			defer wg.Done()
			*out, *err = f.runner.Run(ctx, args...)
		}(q.args, q.out, q.err)
	}
	wg.Wait()

	var snap Snapshot

	var prefs Prefs
	havePrefs := false
	if prefsErr != nil {
		common.LogWarn("Failed to fetch prefs: %v", prefsErr)
	} else if p, err := ParsePrefs(prefsOut); err != nil {
		common.LogWarn("Failed to parse prefs: %v", err)
	} else {
		prefs = p
		havePrefs = true
		snap.SSH = prefs.RunSSH
		snap.AcceptRoutes = prefs.RouteAll
		snap.SelfExitNode = prefs.AdvertiseExitNode
	}

	if statusJSONErr != nil {
		common.LogWarn("Failed to fetch status JSON: %v", statusJSONErr)
	} else {
		if state, err := ParseBackendState(statusJSONOut); err != nil {
			common.LogWarn("Failed to parse backend state: %v", err)
		} else {
			snap.Conn = state
		}
		if name, err := ParseSelfDNSName(statusJSONOut); err == nil {
			snap.DNSName = name
		}
	}
	if snap.Conn == StateUnknown && havePrefs {
		// The status query failed but prefs still say whether the user
		// asked the backend to be up.
		if prefs.WantRunning {
			snap.Conn = StateStarting
		} else {
			snap.Conn = StateStopped
		}
	}

	if statusErr != nil {
		common.LogWarn("Failed to fetch device list: %v", statusErr)
	} else {
		snap.Devices = ParseDevices(statusOut)
	}

	snap.ExitNodes = []ExitNode{{Name: NoExitNodeLabel}}
	if exitErr != nil {
		common.LogWarn("Failed to fetch exit nodes: %v", exitErr)
	} else {
		snap.ExitNodes = append(snap.ExitNodes, ParseExitNodes(exitOut)...)
	}

	if acctErr != nil {
		common.LogWarn("Failed to fetch account list: %v", acctErr)
	} else {
		snap.Accounts = ParseAccounts(acctOut)
	}

	if ipErr != nil {
		common.LogWarn("Failed to fetch IP: %v", ipErr)
	} else {
		snap.IP = ParseIP(ipOut)
	}

	return snap.Normalize()
}
