// Package auth provides JWT access tokens and the middleware that reads them.
//
// The flow is deliberately small:
//  1. POST /api/v1/auth/signup issues a confirmation code (delivered by mail)
//  2. POST /api/v1/auth/token exchanges (username, code) for a signed JWT
//  3. Subsequent requests carry "Authorization: Bearer <jwt>"; the middleware
//     validates the signature and stores the user ID in the request context
//
// The token is stateless: everything needed to authenticate a request is in
// the signed payload, so no session store or DB lookup is required to verify
// it. Role checks DO hit the database — roles change, tokens don't.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "reviewhub"

// TokenService signs and verifies JWT access tokens with an HMAC secret.
// The same secret is used for both operations; rotate it to invalidate all
// outstanding tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService. The secret should be at least 32
// bytes of random data in production (openssl rand -hex 32).
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims embeds jwt.RegisteredClaims; the user's internal ID travels in the
// standard "sub" claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs an access token for the given userID, valid for
// the service's configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the userID from the
// subject claim.
//
// The jwt library checks the signature, expiry, and issuer. Restricting the
// accepted algorithms to HS256 prevents algorithm-confusion attacks where a
// token claims to be signed with "none".
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}

	return c.Subject, nil
}
