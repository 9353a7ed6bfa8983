package password

import (
	"strings"
	"testing"
)

func fastConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func newTestHasher(t *testing.T, cfg Config) *Hasher {
	t.Helper()
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := newTestHasher(t, fastConfig())

	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("expected PHC argon2id encoding, got %q", encoded)
	}

	ok, err := h.Verify("correct-horse", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	h := newTestHasher(t, fastConfig())

	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	ok, err := h.Verify("wrong-horse", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := newTestHasher(t, fastConfig())

	a, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct encodings for same password")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := newTestHasher(t, fastConfig())

	if _, err := h.Hash("short"); err == nil {
		t.Fatal("expected error for password below minimum length")
	}
}

func TestVerifyRejectsMalformedEncoding(t *testing.T) {
	h := newTestHasher(t, fastConfig())

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdA$aGFzaA",
	} {
		if _, err := h.Verify("correct-horse", encoded); err == nil {
			t.Fatalf("expected error for malformed encoding %q", encoded)
		}
	}
}

func TestNeedsRehashOnParameterUpgrade(t *testing.T) {
	old := newTestHasher(t, fastConfig())

	encoded, err := old.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	same := newTestHasher(t, fastConfig())
	needs, err := same.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if needs {
		t.Fatal("expected no rehash for identical parameters")
	}

	upgraded := fastConfig()
	upgraded.Memory = 16 * 1024
	stronger := newTestHasher(t, upgraded)

	needs, err = stronger.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash failed: %v", err)
	}
	if !needs {
		t.Fatal("expected rehash after parameter upgrade")
	}

	// The old hash still verifies with the stored parameters.
	ok, err := stronger.Verify("correct-horse", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected old hash to keep verifying")
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cfg := fastConfig()
	cfg.Memory = 1024
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected error for weak memory parameter")
	}

	cfg = fastConfig()
	cfg.Time = 0
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected error for zero time parameter")
	}
}
