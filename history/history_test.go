package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenAt() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLog_RecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	l.Record("up", "", nil)
	l.Record("set-ssh", "enable=true", nil)
	l.Record("select-exit-node", "node-a", errors.New("backend down"))

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, want 3", len(entries))
	}

	// Newest first
	if entries[0].Op != "select-exit-node" {
		t.Errorf("first entry = %+v, want the last recorded", entries[0])
	}
	if entries[0].OK {
		t.Error("failed operation should record OK=false")
	}
	if entries[0].Error != "backend down" {
		t.Errorf("Error = %q", entries[0].Error)
	}
	if !entries[1].OK || entries[1].Detail != "enable=true" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestLog_Recent_Limit(t *testing.T) {
	l := openTestLog(t)

	for i := 0; i < 10; i++ {
		l.Record("refresh", "", nil)
	}

	entries, err := l.Recent(4)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 4 {
		t.Errorf("Recent(4) returned %d entries", len(entries))
	}
}

func TestLog_Recent_Empty(t *testing.T) {
	l := openTestLog(t)

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Recent() on empty log = %+v", entries)
	}
}

func TestLog_Prune(t *testing.T) {
	l := openTestLog(t)

	// An old row inserted directly, plus one fresh record.
	old := time.Now().Add(-48 * time.Hour).Unix()
	if _, err := l.db.Exec(
		"INSERT INTO operations (ts, op, detail, ok, error) VALUES (?, 'up', '', 1, '')", old,
	); err != nil {
		t.Fatal(err)
	}
	l.Record("down", "", nil)

	if err := l.Prune(24 * time.Hour); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Op != "down" {
		t.Errorf("entries after prune = %+v, want only the fresh one", entries)
	}
}

func TestOpenAt_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	l, err := OpenAt(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Record("up", "", nil)
	l.Close()

	reopened, err := OpenAt(path)
	if err != nil {
		t.Fatalf("OpenAt() reopen error = %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries after reopen = %+v", entries)
	}
}
