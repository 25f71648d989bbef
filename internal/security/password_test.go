package security_test

import (
	"strings"
	"testing"

	"github.com/Code102SoftwareProject/skill-swap-hub-sub004/internal/security"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := security.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(string(hash), "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := security.VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = security.VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if _, err := security.VerifyPassword("x", []byte("not-a-hash")); err == nil {
		t.Fatal("malformed hash must error")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	a, err := security.HashPassword("same password")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := security.HashPassword("same password")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if string(a) == string(b) {
		t.Fatal("two hashes of one password must differ by salt")
	}
}
