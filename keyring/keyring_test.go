package keyring

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tailtray/tailtray/common"
)

// newLocalStore builds a store pinned to local file mode so tests do
// not depend on a desktop keyring daemon.
func newLocalStore(t *testing.T) *Store {
	t.Helper()
	key, err := deriveKey()
	if err != nil {
		t.Fatalf("deriveKey() error = %v", err)
	}
	return &Store{
		useLocal:  true,
		localFile: filepath.Join(t.TempDir(), common.CredentialsFileName),
		key:       key,
		secrets:   make(map[string]string),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newLocalStore(t)

	if err := s.Store("auth-key", "tskey-abc123"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Get("auth-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "tskey-abc123" {
		t.Errorf("Get() = %q, want stored secret", got)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	s := newLocalStore(t)

	_, err := s.Get("missing")
	if !errors.Is(err, common.ErrCredentialsNotFound) {
		t.Errorf("Get() error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := newLocalStore(t)

	if err := s.Store("auth-key", "tskey-abc123"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("auth-key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get("auth-key"); !errors.Is(err, common.ErrCredentialsNotFound) {
		t.Error("secret should be gone after Delete()")
	}

	// Deleting a missing secret is not an error.
	if err := s.Delete("auth-key"); err != nil {
		t.Errorf("Delete() of missing secret error = %v", err)
	}
}

func TestStore_EmptyArguments(t *testing.T) {
	s := newLocalStore(t)

	if err := s.Store("", "x"); err == nil {
		t.Error("Store() should reject an empty key")
	}
	if err := s.Store("x", ""); err == nil {
		t.Error("Store() should reject an empty secret")
	}
	if _, err := s.Get(""); err == nil {
		t.Error("Get() should reject an empty key")
	}
}

func TestStore_FileIsEncrypted(t *testing.T) {
	s := newLocalStore(t)

	if err := s.Store("auth-key", "tskey-plaintext-canary"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.localFile)
	if err != nil {
		t.Fatalf("credential file missing: %v", err)
	}
	if string(data) == "" {
		t.Fatal("credential file is empty")
	}
	if bytes.Contains(data, []byte("tskey-plaintext-canary")) {
		t.Error("secret stored in plaintext")
	}
}

func TestStore_PersistsAcrossLoads(t *testing.T) {
	s := newLocalStore(t)
	if err := s.SetAuthKey("tskey-persist"); err != nil {
		t.Fatal(err)
	}

	reloaded := &Store{
		useLocal:  true,
		localFile: s.localFile,
		key:       s.key,
		secrets:   make(map[string]string),
	}
	reloaded.loadLocal()

	if got := reloaded.AuthKey(); got != "tskey-persist" {
		t.Errorf("AuthKey() after reload = %q, want tskey-persist", got)
	}
}

func TestStore_AuthKeyHelpers(t *testing.T) {
	s := newLocalStore(t)

	if got := s.AuthKey(); got != "" {
		t.Errorf("AuthKey() = %q, want empty before set", got)
	}
	if err := s.SetAuthKey("tskey-xyz"); err != nil {
		t.Fatal(err)
	}
	if got := s.AuthKey(); got != "tskey-xyz" {
		t.Errorf("AuthKey() = %q", got)
	}
	if err := s.DeleteAuthKey(); err != nil {
		t.Fatal(err)
	}
	if got := s.AuthKey(); got != "" {
		t.Errorf("AuthKey() = %q, want empty after delete", got)
	}
}
