package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 72
)

// AuthService implements registration, login and token refresh on top of
// the credential store, a password hasher and a token signer. It keeps no
// state of its own and is safe for concurrent use.
type AuthService struct {
	repo   accounts.Repository
	hasher password.Hasher
	signer auth.Signer
	logger logging.Logger

	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewAuthService(repo accounts.Repository, hasher password.Hasher, signer auth.Signer, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		repo:                         repo,
		hasher:                       hasher,
		signer:                       signer,
		logger:                       logger.With("module", "auth"),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a non-admin account and signs the caller in. A taken
// email is reported as ErrAccountExists whatever the password.
func (s *AuthService) Register(ctx context.Context, email, plaintext string) (*models.AuthResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return nil, common.ErrAccountExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	if err := validatePassword(plaintext); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account, err := s.repo.Create(ctx, &models.Account{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		// lost a race with a concurrent registration for the same email
		if errors.Is(err, common.ErrAccountExists) {
			return nil, common.ErrAccountExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)

	return s.authResult(account)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (*models.AuthResult, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}

	if !s.hasher.Verify(plaintext, account.PasswordHash) {
		s.logger.Debug(ctx, "password mismatch", "account_id", account.ID)
		return nil, common.ErrInvalidCredentials
	}

	return s.authResult(account)
}

// RefreshTokens exchanges a valid refresh token for a fresh pair. The old
// token is not revoked and stays usable until it expires.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingToken
	}

	claims, err := s.signer.Verify(refreshToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	account, err := s.findAccount(ctx, claims.AccountID)
	if err != nil {
		return nil, err
	}

	return s.authResult(account)
}

// Profile returns the public view of the account with the given ID.
func (s *AuthService) Profile(ctx context.Context, accountID string) (models.UserProjection, error) {
	account, err := s.findAccount(ctx, accountID)
	if err != nil {
		return models.UserProjection{}, err
	}
	return models.Project(account), nil
}

// ValidateAccessToken verifies token and returns the account ID it was
// issued for.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrMissingToken
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return "", common.ErrInvalidToken
	}
	return claims.AccountID, nil
}

func (s *AuthService) findAccount(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("error looking up account: %w", err)
	}
	return account, nil
}

func (s *AuthService) authResult(account *models.Account) (*models.AuthResult, error) {
	pair, err := s.issueTokenPair(account.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: models.Project(account), TokenPair: *pair}, nil
}

func (s *AuthService) issueTokenPair(accountID string) (*models.TokenPair, error) {
	accessToken, err := s.signer.Sign(auth.Claims{AccountID: accountID}, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	refreshToken, err := s.signer.Sign(auth.Claims{AccountID: accountID}, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing refresh token: %w", err)
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return common.ErrInvalidEmail
	}
	return nil
}

func validatePassword(plaintext string) error {
	if len(plaintext) < minPasswordLength {
		return common.ErrWeakPassword
	}
	if len(plaintext) > maxPasswordLength {
		return common.ErrPasswordTooLong
	}
	return nil
}
