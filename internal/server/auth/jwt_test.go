package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndVerify_Success(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner([]byte("super-secret"))

	tok, err := s.Sign(Claims{AccountID: "acc-123"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	claims, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.AccountID != "acc-123" {
		t.Fatalf("account id mismatch: got %q want %q", claims.AccountID, "acc-123")
	}
	if claims.ID == "" {
		t.Fatal("expected jti to be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != time.Hour {
		t.Fatalf("unexpected lifetime: %v", got)
	}
}

func TestSign_TokensAreUnique(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner([]byte("k"))

	a, err := s.Sign(Claims{AccountID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	b, err := s.Sign(Claims{AccountID: "u1"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if a == b {
		t.Fatal("two tokens for the same account in the same second must differ")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s := NewJWTSigner([]byte("secret"))

	tok, err := s.Sign(Claims{AccountID: "u1"}, -1*time.Minute)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	_, err = s.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTSigner([]byte("right-secret")).Sign(Claims{AccountID: "u2"}, time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	_, err = NewJWTSigner([]byte("wrong-secret")).Verify(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Rejects(t *testing.T) {
	t.Parallel()

	secret := []byte("k")

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		AccountID:        "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("building none token: %v", err)
	}

	hs512Token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		AccountID:        "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	if err != nil {
		t.Fatalf("building HS512 token: %v", err)
	}

	noExpToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountID: "u1"}).SignedString(secret)
	if err != nil {
		t.Fatalf("building token without exp: %v", err)
	}

	noAccountToken, err := NewJWTSigner(secret).Sign(Claims{}, time.Hour)
	if err != nil {
		t.Fatalf("building token without account: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "malformed", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid"},
		{name: "alg none", token: noneToken},
		{name: "other hmac alg", token: hs512Token},
		{name: "missing exp", token: noExpToken},
		{name: "missing account id", token: noAccountToken},
	}

	s := NewJWTSigner(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			if !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
