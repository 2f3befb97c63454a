package config

import (
	"errors"
	"os"

	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service name secrets are stored under.
const KeyringService = "toolbridge"

// Secrets resolves credentials from the environment and, when enabled, from
// the OS keyring. Environment values always win.
type Secrets struct {
	useKeyring bool
	getenv     func(string) string
	lookup     func(service, user string) (string, error)
}

// NewSecrets reads TOOLBRIDGE_KEYRING to decide whether the keyring is used.
func NewSecrets() *Secrets {
	return &Secrets{
		useKeyring: EnvOrBool("TOOLBRIDGE_KEYRING", false),
		getenv:     os.Getenv,
		lookup:     keyring.Get,
	}
}

// Get returns the value for name, or "" if it is set nowhere.
func (s *Secrets) Get(name string) string {
	if v := s.getenv(name); v != "" {
		return v
	}
	if !s.useKeyring {
		return ""
	}
	v, err := s.lookup(KeyringService, name)
	if err != nil {
		return ""
	}
	return v
}

// Resolve reads each name and returns a map suitable for Missing.
func (s *Secrets) Resolve(names ...string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = s.Get(n)
	}
	return out
}

// StoreSecret writes a secret to the OS keyring.
func StoreSecret(name, value string) error {
	if name == "" {
		return errors.New("config.StoreSecret: name is required")
	}
	return keyring.Set(KeyringService, name, value)
}

// DeleteSecret removes a secret from the OS keyring. A missing secret is not
// an error.
func DeleteSecret(name string) error {
	if err := keyring.Delete(KeyringService, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
