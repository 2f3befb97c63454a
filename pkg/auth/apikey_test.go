package auth

import "testing"

func TestNewKeyStore(t *testing.T) {
	ks := NewKeyStore("desktop:sk-abc,ci:sk-def")

	tests := []struct {
		key    string
		client string
		ok     bool
	}{
		{"sk-abc", "desktop", true},
		{"sk-def", "ci", true},
		{"sk-unknown", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		client, ok := ks.Lookup(tt.key)
		if ok != tt.ok {
			t.Errorf("Lookup(%q) ok=%v, want %v", tt.key, ok, tt.ok)
		}
		if client != tt.client {
			t.Errorf("Lookup(%q) client=%q, want %q", tt.key, client, tt.client)
		}
	}
	if !ks.Enabled() {
		t.Error("store with keys should be enabled")
	}
}

func TestNewKeyStore_Empty(t *testing.T) {
	ks := NewKeyStore("")
	if _, ok := ks.Lookup("anything"); ok {
		t.Error("empty store should not match")
	}
	if ks.Enabled() {
		t.Error("empty store should be disabled")
	}
}

func TestNewKeyStore_Whitespace(t *testing.T) {
	ks := NewKeyStore(" desktop : sk-abc , ci : sk-def , broken, :nokey")
	if client, ok := ks.Lookup("sk-abc"); !ok || client != "desktop" {
		t.Error("should handle whitespace in key pairs")
	}
	if _, ok := ks.Lookup("nokey"); ok {
		t.Error("pair without a client name should be skipped")
	}
}
