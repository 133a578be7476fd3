package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64MB
	argonThreads = 4
	argonKeyLen  = 32 // AES-256
	saltLen      = 16
)

// deriveKey derives an AES-256 key from a passphrase using Argon2id.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(data, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	plaintext, err := gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}

// vaultFile is the on-disk layout. Byte slices are base64 in JSON.
type vaultFile struct {
	Salt []byte `json:"salt"`
	Data []byte `json:"data"`
}

// vault is a passphrase-encrypted JSON map used where no OS keyring exists
// (headless servers, containers).
type vault struct {
	path       string
	passphrase string
}

func (v *vault) load() (map[string]string, error) {
	raw, err := os.ReadFile(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	var f vaultFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	plaintext, err := decrypt(f.Data, deriveKey(v.passphrase, f.Salt))
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	return entries, nil
}

func (v *vault) save(entries map[string]string) error {
	plaintext, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	data, err := encrypt(plaintext, deriveKey(v.passphrase, salt))
	if err != nil {
		return err
	}

	raw, err := json.Marshal(vaultFile{Salt: salt, Data: data})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(v.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(v.path, raw, 0600)
}

func (v *vault) get(name string) (string, error) {
	entries, err := v.load()
	if err != nil {
		return "", err
	}
	val, ok := entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return val, nil
}

func (v *vault) set(name, value string) error {
	entries, err := v.load()
	if err != nil {
		return err
	}
	entries[name] = value
	return v.save(entries)
}

func (v *vault) delete(name string) error {
	entries, err := v.load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return v.save(entries)
}
