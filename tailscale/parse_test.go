package tailscale

import (
	"errors"
	"testing"

	"github.com/tailtray/tailtray/common"
)

func TestParsePrefs(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    Prefs
		wantErr bool
	}{
		{
			name: "all flags set",
			out:  `{"WantRunning":true,"RunSSH":true,"RouteAll":true,"AdvertiseRoutes":["0.0.0.0/0","::/0"]}`,
			want: Prefs{WantRunning: true, RunSSH: true, RouteAll: true, AdvertiseExitNode: true},
		},
		{
			name: "missing keys default to false",
			out:  `{"WantRunning":true}`,
			want: Prefs{WantRunning: true},
		},
		{
			name: "empty route list is not an exit node",
			out:  `{"AdvertiseRoutes":[]}`,
			want: Prefs{},
		},
		{
			name: "null routes",
			out:  `{"AdvertiseRoutes":null}`,
			want: Prefs{},
		},
		{
			name: "routes as legacy string",
			out:  `{"AdvertiseRoutes":"0.0.0.0/0"}`,
			want: Prefs{AdvertiseExitNode: true},
		},
		{
			name:    "malformed JSON",
			out:     `{"WantRunning":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrefs(tt.out)
			if tt.wantErr {
				var parseErr *common.ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("ParsePrefs() error = %v, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePrefs() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePrefs() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBackendState(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want ConnState
	}{
		{"running", `{"BackendState":"Running"}`, StateRunning},
		{"starting", `{"BackendState":"Starting"}`, StateStarting},
		{"stopped", `{"BackendState":"Stopped"}`, StateStopped},
		{"needs login maps to stopped", `{"BackendState":"NeedsLogin"}`, StateStopped},
		{"unrecognized", `{"BackendState":"SomethingNew"}`, StateUnknown},
		{"missing field", `{}`, StateUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackendState(tt.out)
			if err != nil {
				t.Fatalf("ParseBackendState() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBackendState() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseBackendState("not json"); err == nil {
		t.Error("ParseBackendState() should fail on malformed JSON")
	}
}

func TestParseDevices(t *testing.T) {
	out := `
100.101.102.103 this-host    alice@ linux   -
100.101.102.104 peer-one     alice@ linux   active; direct
100.101.102.105 peer-two     alice@ linux   offline
garbage line without an address
100.101.102.106
`

	devices := ParseDevices(out)

	if len(devices) != 2 {
		t.Fatalf("ParseDevices() returned %d devices, want 2", len(devices))
	}

	if devices[0].Name != "peer-one" || devices[0].Addr != "100.101.102.104" {
		t.Errorf("first device = %+v, want peer-one", devices[0])
	}
	if !devices[0].Online {
		t.Error("peer-one should be online")
	}
	if devices[1].Name != "peer-two" {
		t.Errorf("second device = %+v, want peer-two", devices[1])
	}
	if devices[1].Online {
		t.Error("peer-two should be offline")
	}
}

func TestParseDevices_Empty(t *testing.T) {
	if got := ParseDevices(""); got != nil {
		t.Errorf("ParseDevices(\"\") = %v, want nil", got)
	}
}

func TestParseExitNodes(t *testing.T) {
	out := `
IP              HOSTNAME                         COUNTRY  CITY  STATUS
100.64.0.2      node-a.tail1234.ts.net           -        -     -
100.64.0.3      node-b.tail1234.ts.net           -        -     selected
broken row
`

	nodes := ParseExitNodes(out)

	if len(nodes) != 2 {
		t.Fatalf("ParseExitNodes() returned %d nodes, want 2", len(nodes))
	}
	if nodes[0].Name != "node-a" || nodes[0].ID != "node-a.tail1234.ts.net" {
		t.Errorf("first node = %+v", nodes[0])
	}
	if nodes[1].Name != "node-b" {
		t.Errorf("second node = %+v", nodes[1])
	}
}

func TestParseAccounts(t *testing.T) {
	out := `
ID      Account
1234    alice@example.com*
5678    bob@example.com
`

	accounts := ParseAccounts(out)

	if len(accounts) != 2 {
		t.Fatalf("ParseAccounts() returned %d accounts, want 2", len(accounts))
	}
	if accounts[0].Label != "alice@example.com" || !accounts[0].Active {
		t.Errorf("first account = %+v, want active alice", accounts[0])
	}
	if accounts[1].Label != "bob@example.com" || accounts[1].Active {
		t.Errorf("second account = %+v, want inactive bob", accounts[1])
	}
}

func TestParseSelfDNSName(t *testing.T) {
	out := `{"Self":{"DNSName":"myhost.tail1234.ts.net."}}`

	name, err := ParseSelfDNSName(out)
	if err != nil {
		t.Fatalf("ParseSelfDNSName() error = %v", err)
	}
	if name != "myhost.tail1234.ts.net" {
		t.Errorf("ParseSelfDNSName() = %q, want trailing dot removed", name)
	}
}

func TestParseIP(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{"single address", "100.101.102.103\n", "100.101.102.103"},
		{"leading whitespace", "  100.101.102.103  \n", "100.101.102.103"},
		{"no address", "no ip here\n", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseIP(tt.out); got != tt.want {
				t.Errorf("ParseIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
