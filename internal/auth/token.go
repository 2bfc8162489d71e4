package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/focoshop/focoshop-be/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Token verification failure kinds. They are for logging only; clients see a
// single "could not validate credentials" answer.
var (
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenIssuer signs and verifies HS256 access tokens whose subject is the
// user's email.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer from the JWT settings.
func NewTokenIssuer(cfg *config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.TokenTTL(),
		now:    time.Now,
	}
}

// TTL returns the default token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue creates a token for subject using the default lifetime.
func (t *TokenIssuer) Issue(subject string) (string, time.Time, error) {
	return t.IssueWithTTL(subject, t.ttl)
}

// IssueWithTTL creates a token for subject that expires ttl from now.
func (t *TokenIssuer) IssueWithTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	const op = "auth.Issue"

	now := t.now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: expiresAt,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return signed, expiresAt.Time, nil
}

// Verify checks signature and expiry and returns the token subject. A token
// is expired once the clock reaches its exp claim.
func (t *TokenIssuer) Verify(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(_ *jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %v", ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return "", fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	return claims.Subject, nil
}
