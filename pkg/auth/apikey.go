package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
)

// KeyStore maps hashed API keys to client names. Thread-safe.
// Keys are stored as SHA-256 hashes so the raw values do not sit in memory.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[string]string // SHA-256(apiKey) → client
}

// NewKeyStore parses a comma-separated "client:key" list.
// Example: "claude-desktop:sk-abc,ci:sk-def"
func NewKeyStore(raw string) *KeyStore {
	ks := &KeyStore{keys: make(map[string]string)}
	if raw == "" {
		return ks
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 {
			continue
		}
		client := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if client == "" || key == "" {
			continue
		}
		ks.keys[hashKey(key)] = client
	}
	return ks
}

// Enabled reports whether any key is configured. An empty store leaves the
// transport open.
func (ks *KeyStore) Enabled() bool {
	if ks == nil {
		return false
	}
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	return len(ks.keys) > 0
}

// Lookup returns the client name for an API key.
func (ks *KeyStore) Lookup(apiKey string) (client string, ok bool) {
	if apiKey == "" {
		return "", false
	}
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	client, ok = ks.keys[hashKey(apiKey)]
	return
}

func hashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}
