package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects how token signatures are verified.
type SigningMethod string

const (
	// MethodNone skips signature verification.
	MethodNone SigningMethod = ""
	// MethodEd25519 verifies EdDSA signatures.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 verifies HMAC-SHA256 signatures.
	MethodHS256 SigningMethod = "hs256"
)

// ErrNotJWT is returned for tokens that are not JWTs at all.
var ErrNotJWT = errors.New("token is not a jwt")

// Config controls verification. The zero value inspects without verifying.
type Config struct {
	SigningMethod SigningMethod
	// Secret is the HS256 key.
	Secret []byte
	// PublicKey is the Ed25519 key, raw or PEM.
	PublicKey []byte
	// VerifyKeys selects the key by the token's kid header.
	VerifyKeys map[string][]byte
	Issuer     string
	Audience   string
}

// Claims are the registered claims of an inspected token.
type Claims struct {
	jwt.RegisteredClaims
}

// Inspector satisfies goSession.TokenInspector.
type Inspector struct {
	config Config
}

func NewInspector(cfg Config) (*Inspector, error) {
	switch cfg.SigningMethod {
	case MethodNone:
		if len(cfg.Secret) > 0 || len(cfg.PublicKey) > 0 || len(cfg.VerifyKeys) > 0 {
			return nil, errors.New("keys configured without a signing method")
		}
	case MethodHS256:
		if len(cfg.Secret) == 0 && len(cfg.VerifyKeys) == 0 {
			return nil, errors.New("hs256 requires a secret or verify key set")
		}
	case MethodEd25519:
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	for kid, key := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("verify key map contains empty kid")
		}
		if cfg.SigningMethod == MethodEd25519 {
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	}

	return &Inspector{config: cfg}, nil
}

// Inspect parses token and, when keys are configured, verifies it. Time-based
// claims are not evaluated here; see Expired.
func (i *Inspector) Inspect(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrNotJWT
	}

	claims := &Claims{}
	if i.config.SigningMethod == MethodNone {
		parser := jwt.NewParser(jwt.WithoutClaimsValidation())
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
		}
		return claims, i.checkIssuerAudience(claims)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{i.method().Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	parsed, err := parser.ParseWithClaims(token, claims, i.keyFunc)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, i.checkIssuerAudience(claims)
}

// Expired reports whether token's exp is at or before now. Tokens without an
// exp claim never expire. Opaque or unverifiable tokens return an error.
func (i *Inspector) Expired(token string, now time.Time) (bool, error) {
	claims, err := i.Inspect(token)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return !now.Before(claims.ExpiresAt.Time), nil
}

func (i *Inspector) checkIssuerAudience(c *Claims) error {
	if i.config.Issuer != "" && c.Issuer != i.config.Issuer {
		return jwt.ErrTokenInvalidIssuer
	}
	if i.config.Audience != "" && !slices.Contains(c.Audience, i.config.Audience) {
		return jwt.ErrTokenInvalidAudience
	}
	return nil
}

func (i *Inspector) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != i.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if len(i.config.VerifyKeys) > 0 {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := i.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return i.verifyKey(key)
	}

	if i.config.SigningMethod == MethodHS256 {
		return i.config.Secret, nil
	}
	return i.verifyKey(i.config.PublicKey)
}

func (i *Inspector) method() jwt.SigningMethod {
	if i.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (i *Inspector) verifyKey(key []byte) (interface{}, error) {
	if i.config.SigningMethod == MethodHS256 {
		return key, nil
	}
	return parseEdPublicKey(key)
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
