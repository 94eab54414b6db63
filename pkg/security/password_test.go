package security

import (
	"strings"
	"testing"

	"github.com/scholarly-app/scholarly-backend/pkg/config"
)

// fast params so the test suite stays quick
var testCfg = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyRoundTrip(t *testing.T) {
	encoded, err := HashPassword("hunter2!", testCfg)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := VerifyPassword("hunter2!", encoded)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}

	ok, err = VerifyPassword("wrong", encoded)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	if _, err := HashPassword("", testCfg); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "$argon2id$", "$bcrypt$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA"} {
		if _, err := VerifyPassword("pw", encoded); err == nil {
			t.Errorf("expected error for %q", encoded)
		}
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, _ := HashPassword("same", testCfg)
	b, _ := HashPassword("same", testCfg)
	if a == b {
		t.Fatal("two hashes of the same password should differ by salt")
	}
}
