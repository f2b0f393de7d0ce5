package auth

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if CheckPassword("wrong horse", hash) {
		t.Fatalf("expected mismatched password to fail")
	}
}

func TestCheckPasswordRejectsGarbageHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatalf("garbage hash must not verify")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}
