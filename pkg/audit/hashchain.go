package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Record is one audited invocation.
type Record struct {
	ID         string    `json:"id"`
	Adapter    string    `json:"adapter"`
	Tool       string    `json:"tool"`
	Kind       string    `json:"kind"`
	DurationMS int64     `json:"duration_ms"`
	ArgsDigest string    `json:"args_digest"`
	At         time.Time `json:"at"`
	Hash       string    `json:"hash"`
	PrevHash   string    `json:"prev_hash"`
}

// body is the hashed part of a record. At is stored with microsecond
// precision so it survives a Postgres round trip unchanged.
func (r Record) body() []byte {
	b, _ := json.Marshal(struct {
		ID         string `json:"id"`
		Adapter    string `json:"adapter"`
		Tool       string `json:"tool"`
		Kind       string `json:"kind"`
		DurationMS int64  `json:"duration_ms"`
		ArgsDigest string `json:"args_digest"`
		At         string `json:"at"`
	}{r.ID, r.Adapter, r.Tool, r.Kind, r.DurationMS, r.ArgsDigest, r.At.UTC().Format(time.RFC3339Nano)})
	return b
}

// ChainHash computes the next link of an adapter's chain.
//
//	hash = SHA-256( prevHash || body )
func ChainHash(prevHash string, r Record) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write(r.body())
	return hex.EncodeToString(h.Sum(nil))
}

// Seal fills Hash and PrevHash.
func (r *Record) Seal(prevHash string) {
	r.At = r.At.UTC().Truncate(time.Microsecond)
	r.PrevHash = prevHash
	r.Hash = ChainHash(prevHash, *r)
}

// VerifyChain walks records in append order and checks every link.
func VerifyChain(records []Record) error {
	prev := ""
	for i, r := range records {
		if r.PrevHash != prev {
			return fmt.Errorf("chain broken at index %d (record %s): prev_hash %s, want %s", i, r.ID, r.PrevHash, prev)
		}
		if expected := ChainHash(prev, r); r.Hash != expected {
			return fmt.Errorf("chain broken at index %d (record %s): expected %s, got %s", i, r.ID, expected, r.Hash)
		}
		prev = r.Hash
	}
	return nil
}
