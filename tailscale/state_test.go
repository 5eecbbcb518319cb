package tailscale

import "testing"

func TestConnState_String(t *testing.T) {
	tests := []struct {
		state    ConnState
		expected string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateUnknown, "Unknown"},
		{ConnState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ConnState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSnapshot_Normalize(t *testing.T) {
	idx := 2
	snap := Snapshot{
		SelfExitNode:     true,
		SelectedExitNode: &idx,
	}

	norm := snap.Normalize()

	if norm.SelectedExitNode != nil {
		t.Error("Normalize() should clear the selection when the host is an exit node")
	}
	if !norm.SelfExitNode {
		t.Error("Normalize() should not clear SelfExitNode")
	}

	// The original is untouched
	if snap.SelectedExitNode == nil {
		t.Error("Normalize() must not mutate its receiver")
	}
}

func TestSnapshot_Normalize_KeepsSelection(t *testing.T) {
	idx := 1
	snap := Snapshot{SelectedExitNode: &idx}

	norm := snap.Normalize()

	if norm.SelectedExitNode == nil || *norm.SelectedExitNode != 1 {
		t.Error("Normalize() should keep the selection when the host is not an exit node")
	}
}

func TestSnapshot_CurrentAccount(t *testing.T) {
	snap := Snapshot{
		Accounts: []Account{
			{Label: "alice@example.com"},
			{Label: "bob@example.com", Active: true},
		},
	}

	if got := snap.CurrentAccount(); got != "bob@example.com" {
		t.Errorf("CurrentAccount() = %q, want bob", got)
	}

	if got := (Snapshot{}).CurrentAccount(); got != "" {
		t.Errorf("CurrentAccount() = %q, want empty", got)
	}
}

func TestSnapshot_ExitNodeAt(t *testing.T) {
	snap := Snapshot{ExitNodes: []ExitNode{{Name: NoExitNodeLabel}, {Name: "node-a"}}}

	if node, ok := snap.ExitNodeAt(1); !ok || node.Name != "node-a" {
		t.Errorf("ExitNodeAt(1) = %+v, %v", node, ok)
	}
	if _, ok := snap.ExitNodeAt(5); ok {
		t.Error("ExitNodeAt(5) should report out of range")
	}
	if _, ok := snap.ExitNodeAt(-1); ok {
		t.Error("ExitNodeAt(-1) should report out of range")
	}
}
