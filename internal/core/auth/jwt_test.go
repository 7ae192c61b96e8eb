package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "taskhub", TTL: time.Hour}
}

func TestIssueParse(t *testing.T) {
	j := newJWTer()
	tok, err := j.Issue("65f1c0a2b3c4d5e6f7a8b9c0", "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	c, err := j.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.ID != "65f1c0a2b3c4d5e6f7a8b9c0" {
		t.Errorf("ID: got %q", c.ID)
	}
	if c.Role != "admin" {
		t.Errorf("Role: got %q, want admin", c.Role)
	}
}

func TestParseRejects(t *testing.T) {
	j := newJWTer()

	other := &JWTer{Secret: []byte("other-secret"), Issuer: "taskhub", TTL: time.Hour}
	forged, _ := other.Issue("u1", "admin")

	wrongIss := &JWTer{Secret: j.Secret, Issuer: "someone-else", TTL: time.Hour}
	foreign, _ := wrongIss.Issue("u1", "user")

	expired := &JWTer{Secret: j.Secret, Issuer: j.Issuer, TTL: -time.Hour}
	old, _ := expired.Issue("u1", "user")

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "u1"})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noID, _ := j.Issue("", "user")

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": forged,
		"wrong issuer": foreign,
		"expired":      old,
		"alg none":     unsigned,
		"empty id":     noID,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := j.Parse(tok); err == nil {
				t.Errorf("Parse(%s): expected error", name)
			}
		})
	}
}
