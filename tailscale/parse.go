// Package tailscale drives the external tailscale CLI.
// This file contains the output parsers. Each parser is a pure function
// over the raw text of one subcommand. The CLI's output is not a
// committed API, so parsers never fail the whole application on
// unexpected output: malformed records are skipped and missing fields
// degrade to defaults.
package tailscale

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tailtray/tailtray/common"
)

var (
	ipPattern     = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	tsHostPattern = regexp.MustCompile(`\w[\w.-]*\.[\w.-]+\.ts\.net`)
)

// Prefs are the daemon preferences read from `tailscale debug prefs`.
type Prefs struct {
	// WantRunning reports whether the user asked the backend to be up.
	WantRunning bool
	// RunSSH reports whether the tailscale SSH server is enabled.
	RunSSH bool
	// RouteAll reports whether advertised subnet routes are accepted.
	RouteAll bool
	// AdvertiseExitNode reports whether this host advertises routes,
	// which marks it as an exit node.
	AdvertiseExitNode bool
}

// ParsePrefs decodes the JSON from `tailscale debug prefs`. Absent keys
// decode to false; only malformed JSON is an error.
func ParsePrefs(out string) (Prefs, error) {
	var raw struct {
		WantRunning     bool            `json:"WantRunning"`
		RunSSH          bool            `json:"RunSSH"`
		RouteAll        bool            `json:"RouteAll"`
		AdvertiseRoutes json.RawMessage `json:"AdvertiseRoutes"`
	}
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return Prefs{}, &common.ParseError{What: "prefs", Err: err}
	}

	return Prefs{
		WantRunning:       raw.WantRunning,
		RunSSH:            raw.RunSSH,
		RouteAll:          raw.RouteAll,
		AdvertiseExitNode: advertisesRoutes(raw.AdvertiseRoutes),
	}, nil
}

// advertisesRoutes reports whether the AdvertiseRoutes value carries at
// least one route. The field has shipped both as a string and as a list
// across CLI versions.
func advertisesRoutes(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return len(asList) > 0
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString != ""
	}

	return false
}

// ParseBackendState maps the BackendState field of
// `tailscale status --json` to a ConnState. Anything unrecognized is
// StateUnknown.
func ParseBackendState(out string) (ConnState, error) {
	var raw struct {
		BackendState string `json:"BackendState"`
	}
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return StateUnknown, &common.ParseError{What: "backend state", Err: err}
	}

	switch raw.BackendState {
	case "Stopped", "NeedsLogin", "NeedsMachineAuth":
		return StateStopped, nil
	case "Starting":
		return StateStarting, nil
	case "Running":
		return StateRunning, nil
	default:
		return StateUnknown, nil
	}
}

// ParseDevices extracts the remote peers from the line-oriented output
// of `tailscale status`. The first address-bearing line describes this
// host and is dropped. Lines that don't carry an address and a name are
// skipped.
func ParseDevices(out string) []Device {
	var devices []Device
	first := true

	for _, line := range strings.Split(out, "\n") {
		if !ipPattern.MatchString(line) {
			continue
		}
		if first {
			// The self entry
			first = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			common.LogDebug("Skipping malformed status line: %q", line)
			continue
		}

		devices = append(devices, Device{
			Addr:   fields[0],
			Name:   fields[1],
			Online: !strings.Contains(line, "offline"),
		})
	}

	return devices
}

// ParseExitNodes extracts candidate exit nodes from
// `tailscale exit-node list`. Each record line carries a ts.net
// hostname in its second column; everything else is skipped.
func ParseExitNodes(out string) []ExitNode {
	var nodes []ExitNode

	for _, line := range strings.Split(out, "\n") {
		if !tsHostPattern.MatchString(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			common.LogDebug("Skipping malformed exit-node line: %q", line)
			continue
		}

		fqdn := fields[1]
		name, _, found := strings.Cut(fqdn, ".")
		if !found || name == "" {
			continue
		}

		nodes = append(nodes, ExitNode{ID: fqdn, Name: name})
	}

	return nodes
}

// ParseAccounts extracts the configured logins from
// `tailscale switch --list`. The header line is dropped; the active
// account is marked with a trailing asterisk.
func ParseAccounts(out string) []Account {
	var accounts []Account

	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(strings.ToLower(trimmed), "id") {
			continue
		}

		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			continue
		}

		label := fields[1]
		active := strings.Contains(line, "*")
		accounts = append(accounts, Account{
			Label:  strings.TrimSuffix(label, "*"),
			Active: active,
		})
	}

	return accounts
}

// ParseSelfDNSName extracts this host's DNS name from the JSON of
// `tailscale status --json`, without the trailing dot.
func ParseSelfDNSName(out string) (string, error) {
	var raw struct {
		Self struct {
			DNSName string `json:"DNSName"`
		} `json:"Self"`
	}
	if err := json.Unmarshal([]byte(out), &raw); err != nil {
		return "", &common.ParseError{What: "self DNS name", Err: err}
	}
	return strings.TrimSuffix(raw.Self.DNSName, "."), nil
}

// ParseIP returns the first IPv4 address in the output of
// `tailscale ip -4`.
func ParseIP(out string) string {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if ipPattern.MatchString(trimmed) {
			return trimmed
		}
	}
	return ""
}
