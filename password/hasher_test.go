package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestChainVerifiesBothFormats(t *testing.T) {
	legacy := NewBcrypt(bcrypt.MinCost)
	chain := NewChain(newTestArgon2(t, secureConfig()), legacy)

	modern, err := chain.Hash("modern-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	old, err := legacy.Hash("legacy-password")
	if err != nil {
		t.Fatalf("bcrypt Hash error: %v", err)
	}

	if ok, err := chain.Verify("modern-password", modern); err != nil || !ok {
		t.Fatalf("argon2 verify failed: ok=%v err=%v", ok, err)
	}
	if ok, err := chain.Verify("legacy-password", old); err != nil || !ok {
		t.Fatalf("bcrypt verify failed: ok=%v err=%v", ok, err)
	}
	if ok, err := chain.Verify("nope-nope-nope", old); err != nil || ok {
		t.Fatalf("bcrypt mismatch should be false without error: ok=%v err=%v", ok, err)
	}

	if up, err := chain.NeedsUpgrade(old); err != nil || !up {
		t.Fatalf("bcrypt hash should need upgrade: up=%v err=%v", up, err)
	}
	if up, err := chain.NeedsUpgrade(modern); err != nil || up {
		t.Fatalf("current argon2 hash should not need upgrade: up=%v err=%v", up, err)
	}
}

func TestChainRejectsUnknownFormat(t *testing.T) {
	chain := NewChain(newTestArgon2(t, secureConfig()), nil)

	old, err := NewBcrypt(bcrypt.MinCost).Hash("legacy-password")
	if err != nil {
		t.Fatalf("bcrypt Hash error: %v", err)
	}

	if _, err := chain.Verify("legacy-password", old); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash without legacy verifier, got %v", err)
	}
	if _, err := chain.Verify("whatever", "plaintext"); !errors.Is(err, ErrUnsupportedHash) {
		t.Fatalf("expected ErrUnsupportedHash, got %v", err)
	}
}
