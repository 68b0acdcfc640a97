// Package keychain stores registry credentials in the OS credential store.
package keychain

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// serviceName is the keyring service identifier for all relcut credentials.
const serviceName = "com.relcut.cli"

// ErrNotFound is returned when a credential is not stored.
var ErrNotFound = errors.New("credential not found in keychain")

// Keychain provides secure credential storage.
type Keychain interface {
	// Set stores a credential.
	Set(account, secret string) error

	// Get retrieves a credential.
	// Returns ErrNotFound if the credential does not exist.
	Get(account string) (string, error)

	// Delete removes a credential. Returns nil if it does not exist.
	Delete(account string) error
}

type keychain struct {
	ring keyring.Keyring
}

// New opens the platform credential store (macOS Keychain, Secret Service,
// wincred, or an encrypted file fallback).
func New() (Keychain, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &keychain{ring: ring}, nil
}

func (k *keychain) Set(account, secret string) error {
	return k.ring.Set(keyring.Item{
		Key:   account,
		Label: "relcut - " + account,
		Data:  []byte(secret),
	})
}

func (k *keychain) Get(account string) (string, error) {
	item, err := k.ring.Get(account)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (k *keychain) Delete(account string) error {
	err := k.ring.Remove(account)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
