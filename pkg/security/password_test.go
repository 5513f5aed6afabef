package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/hostelhub/hostelhub-backend/pkg/config"
	"github.com/hostelhub/hostelhub-backend/pkg/security"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}

	hash, err := security.HashPassword("very-secure-password", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword returned empty string")
	}

	ok, err := security.VerifyPassword("very-secure-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for valid hash: %v", err)
	}
	if !ok {
		t.Fatal("VerifyPassword failed for the correct password")
	}

	ok, err = security.VerifyPassword("bogus-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error for invalid password: %v", err)
	}
	if ok {
		t.Fatal("VerifyPassword returned true for incorrect password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	if _, err := security.VerifyPassword("irrelevant", "not-a-hash"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := security.ValidatePassword("short"); err == nil {
		t.Fatal("expected short password to be rejected")
	}
	if err := security.ValidatePassword("warden-pass-2025"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	strong := config.PasswordConfig{ArgonMemoryKB: 16384, ArgonTime: 2, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}

	hash, err := security.HashPassword("very-secure-password", weak)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if security.NeedsRehash(hash, weak) {
		t.Fatal("hash produced with current params should not need rehash")
	}
	if !security.NeedsRehash(hash, strong) {
		t.Fatal("expected rehash when params are raised")
	}
	if !security.NeedsRehash("garbage", weak) {
		t.Fatal("malformed hash should need rehash")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	pw, err := security.GenerateTempPassword(16)
	if err != nil {
		t.Fatalf("GenerateTempPassword returned error: %v", err)
	}
	if len(pw) != 16 {
		t.Fatalf("expected 16 chars, got %d", len(pw))
	}
	if _, err := security.GenerateTempPassword(0); err == nil {
		t.Fatal("expected error for zero length")
	}
}

func TestValidatePasswordRejectsBlank(t *testing.T) {
	if err := security.ValidatePassword("          "); err == nil {
		t.Fatal("expected whitespace-only password to be rejected")
	}
	if err := security.ValidatePassword(strings.Repeat("x", security.MaxPasswordLength+1)); err == nil {
		t.Fatal("expected overlong password to be rejected")
	}
}

func TestVerifyPasswordRejectsTamperedHashes(t *testing.T) {
	cfg := config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	hash, err := security.HashPassword("hostel-pass-1", cfg)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding %q", hash)
	}

	for name, bad := range map[string]string{
		"version":   strings.Replace(hash, "v=19", "v=16", 1),
		"algorithm": strings.Replace(hash, "argon2id", "argon2i", 1),
		"params":    strings.Replace(hash, "m=8192,t=1,p=1", "m=x,t=1,p=1", 1),
		"prefix":    "x" + hash,
	} {
		if _, err := security.VerifyPassword("hostel-pass-1", bad); !errors.Is(err, security.ErrInvalidHash) {
			t.Fatalf("%s: expected ErrInvalidHash, got %v", name, err)
		}
	}
}

func TestGenerateTempPasswordAlphabet(t *testing.T) {
	pw, err := security.GenerateTempPassword(200)
	if err != nil {
		t.Fatalf("GenerateTempPassword returned error: %v", err)
	}
	if strings.ContainsAny(pw, "0O1lI") {
		t.Fatalf("temporary password contains ambiguous characters: %q", pw)
	}
}
