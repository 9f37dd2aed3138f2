// Package session issues and verifies the application's JWT session tokens.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a session token stays valid.
const DefaultTTL = 7 * 24 * time.Hour

// Claims are the application claims embedded in a session token.
type Claims struct {
	UserID           uint   `json:"userId"`
	Email            string `json:"email"`
	LinkedInVerified bool   `json:"linkedinVerified"`
	jwt.RegisteredClaims
}

// Signer signs and parses session tokens with an HMAC secret.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner creates a Signer with the default 7-day expiry.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), ttl: DefaultTTL}
}

// Sign mints a session token for the given user.
func (s *Signer) Sign(userID uint, email string, verified bool) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session signing secret is not configured")
	}
	now := time.Now()
	claims := Claims{
		UserID:           userID,
		Email:            email,
		LinkedInVerified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a session token and returns its claims.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	if claims.UserID == 0 {
		return nil, errors.New("session token has no user id")
	}
	return &claims, nil
}
