package kv

import (
	"testing"
	"time"
)

func TestSealOpenTTL(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	plain, err := sealTTL([]byte("v"), 0, now)
	if err != nil || string(plain) != "v" {
		t.Fatalf("seal without ttl = %q, %v", plain, err)
	}

	sealed, err := sealTTL([]byte("v"), time.Minute, now)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}

	if v, expired, err := openTTL(sealed, now.Add(59*time.Second)); err != nil || expired || string(v) != "v" {
		t.Fatalf("open before expiry = %q, %v, %v", v, expired, err)
	}

	if _, expired, err := openTTL(sealed, now.Add(time.Minute)); err != nil || !expired {
		t.Fatalf("open at expiry: expired=%v err=%v", expired, err)
	}

	if _, _, err := openTTL(append(append([]byte{}, envelopePrefix...), '{'), now); err == nil {
		t.Fatal("expected error for a corrupt envelope")
	}
}
