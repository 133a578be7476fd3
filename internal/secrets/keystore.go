package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "clinical-agent"
	vaultFileName  = "vault.json"

	// PassphraseEnv unlocks the file vault when the OS keyring is unavailable.
	PassphraseEnv = "CLINICAL_AGENT_VAULT_PASSPHRASE"
)

// ErrNotFound is returned when a secret is in neither store.
var ErrNotFound = errors.New("secret not found")

// KeyStore manages API keys.
// Primary: OS keyring. Fallback: passphrase-encrypted file, only when a passphrase is set.
type KeyStore struct {
	vault *vault
}

// NewKeyStore creates a key store whose vault lives in dir. An empty
// passphrase disables the vault.
func NewKeyStore(dir, passphrase string) *KeyStore {
	ks := &KeyStore{}
	if passphrase != "" {
		ks.vault = &vault{path: filepath.Join(dir, vaultFileName), passphrase: passphrase}
	}
	return ks
}

// NewKeyStoreFromEnv reads the vault passphrase from PassphraseEnv.
func NewKeyStoreFromEnv(dir string) *KeyStore {
	return NewKeyStore(dir, os.Getenv(PassphraseEnv))
}

// Set stores a secret (tries keyring first, falls back to the vault).
func (ks *KeyStore) Set(name, value string) error {
	err := keyring.Set(keyringService, name, value)
	if err == nil {
		return nil
	}
	if ks.vault == nil {
		return fmt.Errorf("keyring unavailable and no vault passphrase set: %w", err)
	}
	return ks.vault.set(name, value)
}

// Get retrieves a secret.
func (ks *KeyStore) Get(name string) (string, error) {
	if val, err := keyring.Get(keyringService, name); err == nil {
		return val, nil
	}
	if ks.vault == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return ks.vault.get(name)
}

// Delete removes a secret from both stores.
func (ks *KeyStore) Delete(name string) error {
	err := keyring.Delete(keyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		err = nil
	}
	if ks.vault != nil {
		if verr := ks.vault.delete(name); verr != nil {
			return verr
		}
		return nil
	}
	return err
}

// MaskKey returns a masked version of an API key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}
