package tailscale

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/tailtray/tailtray/common"
)

// fakeRunner maps a joined argument string to canned output or an error.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, args ...string) (string, error) {
	key := strings.Join(args, " ")

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if err, ok := f.errs[key]; ok {
		return "", err
	}
	return f.outputs[key], nil
}

func healthyRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{
			"debug prefs":   `{"WantRunning":true,"RunSSH":true,"RouteAll":false,"AdvertiseRoutes":[]}`,
			"status":        "100.1.1.1 this-host alice@ linux -\n100.1.1.2 peer-one alice@ linux active\n",
			"status --json": `{"BackendState":"Running","Self":{"DNSName":"this-host.tail1.ts.net."}}`,
			"exit-node list": "IP HOSTNAME COUNTRY\n" +
				"100.64.0.2 node-a.tail1.ts.net - -\n",
			"switch --list": "ID Account\n1 alice@example.com*\n",
			"ip -4":         "100.1.1.1\n",
		},
		errs: map[string]error{},
	}
}

func TestFetcher_Fetch(t *testing.T) {
	runner := healthyRunner()
	snap := NewFetcher(runner).Fetch(context.Background())

	if snap.Conn != StateRunning {
		t.Errorf("Conn = %v, want Running", snap.Conn)
	}
	if !snap.SSH {
		t.Error("SSH should be enabled")
	}
	if snap.AcceptRoutes {
		t.Error("AcceptRoutes should be disabled")
	}
	if snap.IP != "100.1.1.1" {
		t.Errorf("IP = %q", snap.IP)
	}
	if len(snap.Devices) != 1 || snap.Devices[0].Name != "peer-one" {
		t.Errorf("Devices = %+v, want [peer-one]", snap.Devices)
	}
	// Index 0 is the "no exit node" placeholder
	if len(snap.ExitNodes) != 2 || snap.ExitNodes[0].Name != NoExitNodeLabel || snap.ExitNodes[1].Name != "node-a" {
		t.Errorf("ExitNodes = %+v", snap.ExitNodes)
	}
	if snap.CurrentAccount() != "alice@example.com" {
		t.Errorf("CurrentAccount() = %q", snap.CurrentAccount())
	}
	if snap.DNSName != "this-host.tail1.ts.net" {
		t.Errorf("DNSName = %q, want trailing dot trimmed", snap.DNSName)
	}
}

func TestFetcher_Fetch_PrefsFallbackForConnState(t *testing.T) {
	runner := healthyRunner()
	runner.errs["status --json"] = &common.ExecError{Args: []string{"status"}, ExitCode: 1, Stderr: "timeout"}

	snap := NewFetcher(runner).Fetch(context.Background())

	// With the status query down, WantRunning from prefs still tells
	// connected from stopped apart.
	if snap.Conn != StateStarting {
		t.Errorf("Conn = %v, want Starting from WantRunning", snap.Conn)
	}

	runner.outputs["debug prefs"] = `{"WantRunning":false}`
	snap = NewFetcher(runner).Fetch(context.Background())
	if snap.Conn != StateStopped {
		t.Errorf("Conn = %v, want Stopped when the backend is not wanted", snap.Conn)
	}
}

func TestFetcher_Fetch_PartialFailure(t *testing.T) {
	runner := healthyRunner()
	runner.errs["debug prefs"] = &common.ExecError{Args: []string{"debug", "prefs"}, ExitCode: 1, Stderr: "denied"}

	snap := NewFetcher(runner).Fetch(context.Background())

	// The failing field defaults; every other field still populates.
	if snap.SSH {
		t.Error("SSH should default to false when prefs fail")
	}
	if snap.Conn != StateRunning {
		t.Errorf("Conn = %v, want Running despite prefs failure", snap.Conn)
	}
	if len(snap.Devices) != 1 {
		t.Errorf("Devices = %+v, want 1 device despite prefs failure", snap.Devices)
	}
}

func TestFetcher_Fetch_AllFailing(t *testing.T) {
	err := &common.ExecError{Args: []string{"x"}, ExitCode: -1, Stderr: "not installed"}
	runner := &fakeRunner{
		outputs: map[string]string{},
		errs: map[string]error{
			"debug prefs":    err,
			"status":         err,
			"status --json":  err,
			"exit-node list": err,
			"switch --list":  err,
			"ip -4":          err,
		},
	}

	snap := NewFetcher(runner).Fetch(context.Background())

	// A missing tailscale binary yields an empty snapshot, not a crash.
	if snap.Conn != StateUnknown {
		t.Errorf("Conn = %v, want Unknown", snap.Conn)
	}
	if snap.IP != "" || snap.Devices != nil || snap.Accounts != nil {
		t.Errorf("snapshot should be empty, got %+v", snap)
	}
	if len(snap.ExitNodes) != 1 {
		t.Errorf("ExitNodes should hold only the placeholder, got %+v", snap.ExitNodes)
	}
}

func TestFetcher_Fetch_IssuesAllQueries(t *testing.T) {
	runner := healthyRunner()
	NewFetcher(runner).Fetch(context.Background())

	want := map[string]bool{
		"debug prefs":    false,
		"status":         false,
		"status --json":  false,
		"exit-node list": false,
		"switch --list":  false,
		"ip -4":          false,
	}
	for _, call := range runner.calls {
		if _, ok := want[call]; ok {
			want[call] = true
		}
	}
	for q, seen := range want {
		if !seen {
			t.Errorf("sub-query %q was never issued", q)
		}
	}
}
