package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned by Parse when a valid token carries no
// usable "sub" claim.
var ErrMissingSubject = errors.New("token missing subject")

// AccessToken is a signed JWT along with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the raw value handed to the client.  Only its keyed hash
// is persisted.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// TokenIssuer signs and verifies access tokens with one HMAC secret.  The
// subject claim is the user id in string form.
type TokenIssuer struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds an issuer for one of HS256, HS384 or HS512.
func NewTokenIssuer(secret, algorithm string, ttl time.Duration) (*TokenIssuer, error) {
	m := jwt.GetSigningMethod(strings.ToUpper(algorithm))
	if _, ok := m.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("empty signing secret")
	}
	return &TokenIssuer{secret: []byte(secret), method: m, ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued tokens.
func (ti *TokenIssuer) TTL() time.Duration { return ti.ttl }

// Issue builds and signs a token for userID.  The claims are sub, iat and
// exp.
func (ti *TokenIssuer) Issue(userID string) (AccessToken, error) {
	now := ti.now().UTC()
	exp := now.Add(ti.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(ti.method, claims).SignedString(ti.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Parse verifies signature, algorithm and expiry and returns the subject.
func (ti *TokenIssuer) Parse(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != ti.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{ti.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}

// NewRefreshToken returns a random 48-byte hex token expiring ttlDays from now.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefresh returns the HMAC-SHA256 of raw keyed by secret, hex encoded.
// A leaked table cannot be replayed without the refresh secret.
func HashRefresh(secret, raw string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
