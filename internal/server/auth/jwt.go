// Package auth signs and verifies the bearer tokens handed out by the auth
// workflow. Tokens are HS256 JWTs whose only custom claim is the account ID.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenExpired is returned by Verify for a well-formed, correctly signed
// token whose exp claim is in the past.
var ErrTokenExpired = errors.New("token expired")

// Claims is the token payload. The registered claims carry exp, iat and a
// random jti so two tokens minted in the same second still differ.
type Claims struct {
	AccountID string `json:"_id"`
	jwt.RegisteredClaims
}

// Signer issues and verifies signed, expiring tokens.
type Signer interface {
	Sign(claims Claims, ttl time.Duration) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTSigner is a Signer backed by an HMAC secret.
type JWTSigner struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTSigner(secret []byte) *JWTSigner {
	return &JWTSigner{
		secret: secret,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// Sign stamps iat, exp and jti onto claims and returns the compact token.
func (s *JWTSigner) Sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.ID = uuid.NewString()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// ErrTokenExpired; anything else wrong yields common.ErrInvalidToken.
func (s *JWTSigner) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := s.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.AccountID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
