package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifierRoundTrip(t *testing.T) {
	verifier, err := NewVerifier("test-signing-secret")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	token, err := verifier.Issue("user-123", "moviebuff", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	identity, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.UserID != "user-123" {
		t.Fatalf("user id = %s, want user-123", identity.UserID)
	}
	if identity.Username != "moviebuff" {
		t.Fatalf("username = %s, want moviebuff", identity.Username)
	}
}

func TestVerifierUsernameFallsBackToSubject(t *testing.T) {
	verifier, _ := NewVerifier("test-signing-secret")

	token, err := verifier.Issue("user-456", "", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	identity, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if identity.Username != "user-456" {
		t.Fatalf("username = %s, want subject fallback", identity.Username)
	}
}

func TestVerifierRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewVerifier("secret-one")
	verifier, _ := NewVerifier("secret-two")

	token, err := issuer.Issue("user-123", "moviebuff", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected verification failure for wrong secret")
	}
}

func TestVerifierRejectsExpiredToken(t *testing.T) {
	verifier, _ := NewVerifier("test-signing-secret")

	token, err := verifier.Issue("user-123", "moviebuff", -time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected verification failure for expired token")
	}
}

func TestVerifierRejectsMissingSubject(t *testing.T) {
	verifier, _ := NewVerifier("test-signing-secret")

	claims := &Claims{
		Username: "ghost",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Fatalf("expected verification failure for missing subject")
	}
}

func TestVerifierRejectsUnsignedToken(t *testing.T) {
	verifier, _ := NewVerifier("test-signing-secret")

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := verifier.Verify(unsigned); err == nil {
		t.Fatalf("expected verification failure for alg=none token")
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	if _, err := NewVerifier(""); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
