// Package keyring provides secure credential storage.
// It uses the system keyring when available, falling back to an
// encrypted local file when not.
package keyring

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/scrypt"

	"github.com/tailtray/tailtray/common"
)

const (
	// serviceName is the identifier used in the system keyring.
	serviceName = "tailtray"
	// authKeyName is the credential slot holding the tailscale auth key.
	authKeyName = "auth-key"
)

// scrypt parameters for the local fallback key.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
)

// Store persists secrets. It probes the system keyring once and falls
// back to an AES-GCM encrypted file keyed off machine identity when the
// keyring is unavailable. Store implements common.CredentialStore.
type Store struct {
	mu        sync.RWMutex
	useLocal  bool
	localFile string
	key       []byte
	secrets   map[string]string
}

// NewStore creates a credential store, probing the system keyring.
func NewStore() (*Store, error) {
	s := &Store{}

	probe := serviceName + "-probe"
	if err := keyring.Set(serviceName, probe, "probe"); err == nil {
		_ = keyring.Delete(serviceName, probe)
		return s, nil
	}

	common.LogInfo("System keyring unavailable, using encrypted local storage")
	if err := s.initLocal(); err != nil {
		return nil, common.WrapError(err, "init credential storage")
	}
	return s, nil
}

func (s *Store) initLocal() error {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return err
	}
	s.localFile = filepath.Join(configDir, common.CredentialsFileName)

	key, err := deriveKey()
	if err != nil {
		return err
	}
	s.key = key
	s.useLocal = true
	s.secrets = make(map[string]string)
	s.loadLocal()
	return nil
}

// deriveKey stretches machine identity into an encryption key. The
// resulting file is only readable on the machine that wrote it.
func deriveKey() ([]byte, error) {
	hostname, _ := os.Hostname()
	salt := fmt.Sprintf("%s-%s-%d", serviceName, hostname, os.Getuid())
	return scrypt.Key([]byte(machineID()), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err != nil {
		return "default-machine-id"
	}
	return strings.TrimSpace(string(data))
}

func (s *Store) loadLocal() {
	data, err := os.ReadFile(s.localFile)
	if err != nil {
		return
	}
	plaintext, err := s.decrypt(data)
	if err != nil {
		common.LogWarn("Failed to decrypt credential file: %v", err)
		return
	}
	if err := json.Unmarshal(plaintext, &s.secrets); err != nil {
		common.LogWarn("Failed to parse credential file: %v", err)
	}
}

func (s *Store) saveLocal() error {
	data, err := json.Marshal(s.secrets)
	if err != nil {
		return err
	}
	encrypted, err := s.encrypt(data)
	if err != nil {
		return err
	}
	return os.WriteFile(s.localFile, encrypted, 0600)
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(ciphertext)), nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// Store saves a secret under a key.
func (s *Store) Store(key, secret string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.useLocal {
		s.secrets[key] = secret
		if err := s.saveLocal(); err != nil {
			return common.WrapError(common.ErrCredentialStorage, err.Error())
		}
		return nil
	}

	if err := keyring.Set(serviceName, key, secret); err != nil {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	return nil
}

// Get retrieves a secret for a key.
func (s *Store) Get(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.useLocal {
		secret, ok := s.secrets[key]
		if !ok {
			return "", common.ErrCredentialsNotFound
		}
		return secret, nil
	}

	secret, err := keyring.Get(serviceName, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", common.ErrCredentialsNotFound
		}
		return "", common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	return secret, nil
}

// Delete removes a secret for a key. Deleting a missing secret is not
// an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.useLocal {
		delete(s.secrets, key)
		return s.saveLocal()
	}

	if err := keyring.Delete(serviceName, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return common.WrapError(common.ErrCredentialStorage, err.Error())
	}
	return nil
}

// SetAuthKey stores the tailscale auth key used for unattended `up`.
func (s *Store) SetAuthKey(key string) error {
	return s.Store(authKeyName, key)
}

// AuthKey returns the stored auth key, or empty when none is set.
func (s *Store) AuthKey() string {
	key, err := s.Get(authKeyName)
	if err != nil {
		return ""
	}
	return key
}

// DeleteAuthKey removes the stored auth key.
func (s *Store) DeleteAuthKey() error {
	return s.Delete(authKeyName)
}
