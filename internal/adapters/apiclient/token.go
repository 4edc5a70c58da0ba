package apiclient

import (
	"crypto/rsa"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenTTL = 5 * time.Minute

// TokenSigner issues short-lived RS256 service tokens for API requests.
type TokenSigner struct {
	key    *rsa.PrivateKey
	issuer string
	now    func() time.Time
}

func NewTokenSigner(key *rsa.PrivateKey, issuer string) *TokenSigner {
	return &TokenSigner{key: key, issuer: issuer, now: time.Now}
}

func (s *TokenSigner) Token() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   "membership-console",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.key)
}
