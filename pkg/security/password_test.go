package security_test

import (
	"strings"
	"testing"

	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    32768,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("glass-owner-pass", testPasswordConfig())
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$") {
		t.Fatalf("unexpected hash format %q", hash)
	}

	ok, err := security.VerifyPassword("glass-owner-pass", hash)
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

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := security.HashPassword("", testPasswordConfig()); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyPasswordBadHash(t *testing.T) {
	bad := []string{
		"not-a-hash",
		"$argon2id$v=19$m=abc,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=32768,t=1,p=1$c2FsdA$",
		"$bcrypt$v=19$m=32768,t=1,p=1$c2FsdA$a2V5",
	}
	for _, encoded := range bad {
		if _, err := security.VerifyPassword("irrelevant", encoded); err == nil {
			t.Fatalf("expected error for malformed hash %q", encoded)
		}
	}
}

func TestEqualSecret(t *testing.T) {
	if !security.EqualSecret("demo", "demo") {
		t.Fatal("expected equal secrets to match")
	}
	if security.EqualSecret("demo", "other") {
		t.Fatal("expected different secrets to differ")
	}
	if security.EqualSecret("", "") {
		t.Fatal("an empty expected secret must never match")
	}
}
