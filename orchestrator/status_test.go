package orchestrator

import (
	"context"
	"testing"
	"time"
)

// runExpiry fires the fake clock and executes the expiry command that
// setStatus returned, feeding its event back into the machine.
func runExpiry(t *testing.T, o *Orchestrator, clock *fakeClock, cmds []Cmd) {
	t.Helper()
	if len(cmds) != 1 {
		t.Fatalf("expected exactly one expiry command, got %d", len(cmds))
	}
	clock.fire()

	done := make(chan Event, 1)
	go func() { done <- cmds[0](context.Background()) }()
	select {
	case ev := <-done:
		o.Update(ev)
	case <-time.After(time.Second):
		t.Fatal("expiry command never returned after the clock fired")
	}
}

func TestStatus_Expires(t *testing.T) {
	clock := newFakeClock()
	o := New(Options{Source: &fakeSource{}, Backend: &fakeBackend{}, Clock: clock})

	cmds := o.info("Connected")

	if o.View().Status == nil || o.View().Status.Text != "Connected" {
		t.Fatalf("Status = %+v, want Connected", o.View().Status)
	}

	runExpiry(t, o, clock, cmds)

	if o.View().Status != nil {
		t.Error("status should clear after its delay elapses")
	}
}

func TestStatus_ExpiryIgnoredWhenReplaced(t *testing.T) {
	clock := newFakeClock()
	o := New(Options{Source: &fakeSource{}, Backend: &fakeBackend{}, Clock: clock})

	firstExpiry := o.info("first")
	o.info("second")

	// The first message's timer fires after it was already replaced.
	runExpiry(t, o, clock, firstExpiry)

	v := o.View()
	if v.Status == nil || v.Status.Text != "second" {
		t.Errorf("Status = %+v, want second to survive the stale expiry", v.Status)
	}
}

func TestStatus_Dismiss(t *testing.T) {
	o := New(Options{Source: &fakeSource{}, Backend: &fakeBackend{}, Clock: newFakeClock()})

	o.info("visible")
	o.Update(DismissStatus{})

	if o.View().Status != nil {
		t.Error("DismissStatus should clear immediately")
	}
}

func TestStatus_TokensDiffer(t *testing.T) {
	o := New(Options{Source: &fakeSource{}, Backend: &fakeBackend{}, Clock: newFakeClock()})

	o.info("one")
	first := o.View().Status.Token
	o.info("two")
	second := o.View().Status.Token

	if first == second {
		t.Error("each status message needs its own expiry token")
	}
}
