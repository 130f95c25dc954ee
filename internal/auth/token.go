package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rijon63/fothebys-auction-system/internal/apperr"
	"github.com/Rijon63/fothebys-auction-system/internal/clock"
	"github.com/Rijon63/fothebys-auction-system/internal/config"
)

// Claims is the JWT payload. The subject is the user id.
type Claims struct {
	Role     Role   `json:"role"`
	ClientID string `json:"clientId,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// NewTokens returns a Tokens using the configured secret.
func NewTokens(cfg config.AuthConfig, clk clock.Clock) *Tokens {
	return &Tokens{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		clock:  clk,
	}
}

// Issue mints a token for id valid for the configured TTL.
func (t *Tokens) Issue(id Identity) (string, error) {
	if id.UserID == "" || !id.Role.Valid() {
		return "", fmt.Errorf("issuing token for %q/%q: %w", id.UserID, id.Role, apperr.ErrValidation)
	}
	now := t.clock.Now()
	claims := Claims{
		Role:     id.Role,
		ClientID: id.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify parses raw and returns the identity it carries. Every failure
// wraps apperr.ErrUnauthenticated.
func (t *Tokens) Verify(raw string) (Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("verifying token: %w", errors.Join(apperr.ErrUnauthenticated, err))
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return Identity{}, fmt.Errorf("token missing subject or role: %w", apperr.ErrUnauthenticated)
	}
	return Identity{UserID: claims.Subject, ClientID: claims.ClientID, Role: claims.Role}, nil
}
