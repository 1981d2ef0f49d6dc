package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestMemoryKVTTL 测试过期的键在读取和列举时都不可见.
func TestMemoryKVTTL(t *testing.T) {
	ctx := context.Background()
	m := &MemoryKV{now: time.Now}

	if err := m.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := m.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	if v, err := m.Get(ctx, "short"); err != nil || string(v) != "x" {
		t.Fatalf("get before expiry = %q, %v", v, err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Second) }

	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound after expiry, got %v", err)
	}

	keys, _ := m.Keys(ctx, "")
	if len(keys) != 1 || keys[0] != "forever" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		key, pattern string
		want         bool
	}{
		{"role:a", "", true},
		{"role:a", "*", true},
		{"role:a", "role:*", true},
		{"gallery:a", "role:*", false},
		{"role:a", "role:a", true},
		{"role:ab", "role:a", false},
	}

	for _, tt := range tests {
		if got := matchPattern(tt.key, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.key, tt.pattern, got, tt.want)
		}
	}
}
