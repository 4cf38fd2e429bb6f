// Package secrets resolves API-key references from the OS keyring.
//
// Config values like api_key accept three forms:
//   - a literal key
//   - ${VAR}, resolved from the environment by the config loader
//   - keyring:<item>, resolved here from the OS credential store
//     (macOS Keychain, Windows Credential Manager, Secret Service on Linux)
//
// Keeping keys in the keyring means askdb.yaml can be shared or checked in
// without leaking credentials.
package secrets

import (
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies the askdb namespace in the OS credential store.
const ServiceName = "askdb"

const keyringPrefix = "keyring:"

var (
	mu   sync.Mutex
	ring keyring.Keyring
)

func openRing() (keyring.Keyring, error) {
	mu.Lock()
	defer mu.Unlock()
	if ring != nil {
		return ring, nil
	}
	r, err := keyring.Open(keyring.Config{
		ServiceName:              ServiceName,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	ring = r
	return ring, nil
}

// Resolve expands a keyring:<item> reference into the stored secret.
// Any other value is returned unchanged.
func Resolve(ref string) (string, error) {
	if !strings.HasPrefix(ref, keyringPrefix) {
		return ref, nil
	}
	item := strings.TrimPrefix(ref, keyringPrefix)
	if item == "" {
		return "", fmt.Errorf("empty keyring reference")
	}
	r, err := openRing()
	if err != nil {
		return "", err
	}
	entry, err := r.Get(item)
	if err != nil {
		return "", fmt.Errorf("keyring item %q: %w", item, err)
	}
	return string(entry.Data), nil
}

// Store saves a secret under the given item name (used by `askdb secret set`).
func Store(item, value string) error {
	r, err := openRing()
	if err != nil {
		return err
	}
	return r.Set(keyring.Item{Key: item, Data: []byte(value)})
}

// Delete removes a stored secret.
func Delete(item string) error {
	r, err := openRing()
	if err != nil {
		return err
	}
	return r.Remove(item)
}
