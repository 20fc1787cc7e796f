package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func signHS(t *testing.T, secret []byte, exp time.Time) string {
	t.Helper()
	claims := gjwt.RegisteredClaims{Subject: "7", ExpiresAt: gjwt.NewNumericDate(exp), Issuer: "backoffice"}
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestExpiredWithoutVerification(t *testing.T) {
	in, err := NewInspector(Config{})
	if err != nil {
		t.Fatalf("new inspector: %v", err)
	}
	exp := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := signHS(t, []byte("server-secret-we-do-not-know"), exp)

	expired, err := in.Expired(tok, exp.Add(-time.Second))
	if err != nil || expired {
		t.Fatalf("expected live token, got expired=%v err=%v", expired, err)
	}
	expired, err = in.Expired(tok, exp)
	if err != nil || !expired {
		t.Fatalf("expected expired at exp, got expired=%v err=%v", expired, err)
	}
}

func TestExpiredOpaqueTokenErrors(t *testing.T) {
	in, _ := NewInspector(Config{})
	if _, err := in.Expired("3|laravel-sanctum-opaque", time.Now()); !errors.Is(err, ErrNotJWT) {
		t.Fatalf("expected ErrNotJWT, got %v", err)
	}
	if _, err := in.Expired("a.b.c", time.Now()); err == nil {
		t.Fatal("expected malformed jwt error")
	}
}

func TestExpiredNoExpClaimNeverExpires(t *testing.T) {
	tok, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, gjwt.RegisteredClaims{Subject: "1"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	in, _ := NewInspector(Config{})
	if expired, err := in.Expired(tok, time.Now()); err != nil || expired {
		t.Fatalf("expected non-expiring token, got %v %v", expired, err)
	}
}

func TestInspectVerifiesHS256(t *testing.T) {
	secret := []byte("secret-secret-secret-secret")
	in, err := NewInspector(Config{SigningMethod: MethodHS256, Secret: secret, Issuer: "backoffice"})
	if err != nil {
		t.Fatalf("new inspector: %v", err)
	}

	good := signHS(t, secret, time.Now().Add(-time.Hour))
	claims, err := in.Inspect(good)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.Subject != "7" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}

	if _, err := in.Inspect(signHS(t, []byte("other-secret-other-secret"), time.Now())); err == nil {
		t.Fatal("expected signature failure")
	}
}

func TestInspectRejectsWrongAlgorithm(t *testing.T) {
	pub, _ := newEdKeys(t)
	in, err := NewInspector(Config{SigningMethod: MethodEd25519, PublicKey: pub})
	if err != nil {
		t.Fatalf("new inspector: %v", err)
	}

	if _, err := in.Inspect(signHS(t, []byte("secret-secret-secret-secret"), time.Now())); err == nil {
		t.Fatal("expected wrong algorithm to be rejected")
	}
}

func TestInspectEd25519WithKid(t *testing.T) {
	pub, priv := newEdKeys(t)
	in, err := NewInspector(Config{SigningMethod: MethodEd25519, VerifyKeys: map[string][]byte{"k1": pub}, Audience: "admin"})
	if err != nil {
		t.Fatalf("new inspector: %v", err)
	}

	claims := gjwt.RegisteredClaims{Audience: gjwt.ClaimStrings{"admin"}, ExpiresAt: gjwt.NewNumericDate(time.Now().Add(time.Minute))}
	tok := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString(priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := in.Inspect(signed); err != nil {
		t.Fatalf("Inspect: %v", err)
	}

	delete(tok.Header, "kid")
	unsigned, _ := tok.SignedString(priv)
	if _, err := in.Inspect(unsigned); err == nil {
		t.Fatal("expected missing kid to be rejected")
	}
}

func TestNewInspectorValidation(t *testing.T) {
	cases := []Config{
		{Secret: []byte("x")},
		{SigningMethod: MethodHS256},
		{SigningMethod: MethodEd25519},
		{SigningMethod: MethodEd25519, PublicKey: []byte("short")},
		{SigningMethod: "rs256"},
	}
	for i, cfg := range cases {
		if _, err := NewInspector(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
