// Package audit keeps a hash-chained record of tool invocations. Arguments
// and results are never stored; only a digest of the canonical arguments.
package audit

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// CanonicalJSON produces a stable byte form of v: object keys sorted, no
// insignificant whitespace, numbers kept exactly as first encoded.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("audit.CanonicalJSON marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("audit.CanonicalJSON decode: %w", err)
	}
	// encoding/json writes map keys in sorted order.
	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("audit.CanonicalJSON re-marshal: %w", err)
	}
	return out, nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Digest returns the SHA-256 of the canonical form of args. Nil args (a call
// rejected before validation) digest to "".
func Digest(args map[string]any) (string, error) {
	if args == nil {
		return "", nil
	}
	canon, err := CanonicalJSON(args)
	if err != nil {
		return "", err
	}
	return HashBytes(canon), nil
}
