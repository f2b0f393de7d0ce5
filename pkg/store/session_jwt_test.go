package store

import (
	"testing"
	"time"
)

func TestJWTSessionRoundTrip(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Minute, nil)
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	uid, ok, err := s.GetUserIDByToken(token)
	if err != nil || !ok {
		t.Fatalf("resolve token: ok=%v err=%v", ok, err)
	}
	if uid != "user-1" {
		t.Fatalf("unexpected user id %q", uid)
	}
}

func TestJWTSessionRejectsForeignSignature(t *testing.T) {
	issuer, err := NewJWTSessionStore("secret-a", time.Minute, nil)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	verifier, err := NewJWTSessionStore("secret-b", time.Minute, nil)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	token, err := issuer.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, ok, err := verifier.GetUserIDByToken(token); ok || err == nil {
		t.Fatalf("foreign-signed token must be rejected")
	}
}

func TestJWTSessionDeleteRevokesToken(t *testing.T) {
	s, err := NewJWTSessionStore("test-secret", time.Minute, NewMemoryTokenRevoker())
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	token, err := s.NewSession("user-1")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.DeleteSession(token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := s.GetUserIDByToken(token); ok || err == nil {
		t.Fatalf("revoked token must not resolve")
	}
}

func TestJWTSessionRequiresSecret(t *testing.T) {
	if _, err := NewJWTSessionStore("  ", time.Minute, nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
