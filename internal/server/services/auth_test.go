package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 15 * 24 * time.Hour,
	}
}

func newTestHasher(t *testing.T) password.Hasher {
	t.Helper()
	h, err := password.NewBcrypt(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newTestSigner() *auth.JWTSigner {
	return auth.NewJWTSigner([]byte("test-secret"))
}

func newTestService(t *testing.T, repo accounts.Repository) *AuthService {
	t.Helper()
	if repo == nil {
		repo = accounts.NewInMemoryRepository()
	}
	return NewAuthService(repo, newTestHasher(t), newTestSigner(), testConfig(), logging.Nop())
}

// fakeRepo wraps an in-memory repository and lets tests inject failures.
type fakeRepo struct {
	*accounts.InMemoryRepository

	findByEmailErr error
	findByIDErr    error
	createErr      error
	createCalls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{InMemoryRepository: accounts.NewInMemoryRepository()}
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if f.findByEmailErr != nil {
		return nil, f.findByEmailErr
	}
	return f.InMemoryRepository.FindByEmail(ctx, email)
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if f.findByIDErr != nil {
		return nil, f.findByIDErr
	}
	return f.InMemoryRepository.FindByID(ctx, id)
}

func (f *fakeRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.InMemoryRepository.Create(ctx, a)
}

type fakeSigner struct {
	signErrOn int // 1-based call number that fails; 0 means never
	calls     int
}

func (f *fakeSigner) Sign(auth.Claims, time.Duration) (string, error) {
	f.calls++
	if f.calls == f.signErrOn {
		return "", errBoom
	}
	return fmt.Sprintf("token-%d", f.calls), nil
}

func (f *fakeSigner) Verify(string) (*auth.Claims, error) { return nil, common.ErrInvalidToken }

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errBoom }
func (failingHasher) Verify(string, string) bool  { return false }

// --- Register ---

func TestRegister_Success(t *testing.T) {
	s := newTestService(t, nil)

	res, err := s.Register(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.False(t, res.User.IsAdmin)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	repo := accounts.NewInMemoryRepository()
	s := newTestService(t, repo)

	res, err := s.Register(context.Background(), "alice@example.com", "secret1")
	require.NoError(t, err)

	stored, err := repo.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	for _, pw := range []string{"secret1", "different", "another-one"} {
		_, err = s.Register(ctx, "alice@example.com", pw)
		assert.ErrorIs(t, err, common.ErrAccountExists)
	}
}

func TestRegister_TakenEmailWinsOverPasswordRules(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"empty", ""},
		{"too short", "abc"},
		{"too long", strings.Repeat("a", 80)},
	}

	repo := newFakeRepo()
	s := newTestService(t, repo)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, "alice@example.com", tt.password)
			assert.ErrorIs(t, err, common.ErrAccountExists)
		})
	}
	assert.Equal(t, 1, repo.createCalls)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"empty email", "", "secret1", common.ErrInvalidEmail},
		{"no at sign", "alice.example.com", "secret1", common.ErrInvalidEmail},
		{"display name", "Alice <alice@example.com>", "secret1", common.ErrInvalidEmail},
		{"surrounding spaces", " alice@example.com ", "secret1", common.ErrInvalidEmail},
		{"short password", "alice@example.com", "12345", common.ErrWeakPassword},
		{"empty password", "alice@example.com", "", common.ErrWeakPassword},
		{"long password", "alice@example.com", strings.Repeat("a", 73), common.ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			s := newTestService(t, repo)

			_, err := s.Register(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, repo.createCalls)
		})
	}
}

func TestRegister_PasswordBounds(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, "six@example.com", "123456")
	assert.NoError(t, err)

	_, err = s.Register(ctx, "max@example.com", strings.Repeat("a", 72))
	assert.NoError(t, err)
}

func TestRegister_LookupError(t *testing.T) {
	repo := newFakeRepo()
	repo.findByEmailErr = errBoom
	s := newTestService(t, repo)

	_, err := s.Register(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, repo.createCalls)
}

func TestRegister_CreateReportsDuplicate(t *testing.T) {
	// lookup misses but the store's unique index rejects the insert
	repo := newFakeRepo()
	repo.createErr = common.ErrAccountExists
	s := newTestService(t, repo)

	_, err := s.Register(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrAccountExists)
}

func TestRegister_CreateError(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errBoom
	s := newTestService(t, repo)

	_, err := s.Register(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrAccountExists)
}

func TestRegister_HashError(t *testing.T) {
	repo := newFakeRepo()
	s := NewAuthService(repo, failingHasher{}, newTestSigner(), testConfig(), logging.Nop())

	_, err := s.Register(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, repo.createCalls)
}

func TestRegister_SignerError(t *testing.T) {
	for _, failOn := range []int{1, 2} {
		t.Run(fmt.Sprintf("sign call %d", failOn), func(t *testing.T) {
			s := NewAuthService(newFakeRepo(), newTestHasher(t), &fakeSigner{signErrOn: failOn}, testConfig(), logging.Nop())

			_, err := s.Register(context.Background(), "alice@example.com", "secret1")
			assert.ErrorIs(t, err, errBoom)
		})
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	const n = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		exists  int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Register(ctx, "race@example.com", "secret1")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, common.ErrAccountExists):
				exists++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	assert.Equal(t, n-1, exists)
}

// --- Login ---

func TestLogin_ReturnsSameAccount(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.org", "c.d+tag@example.net"} {
		reg, err := s.Register(ctx, email, "secret1")
		require.NoError(t, err)

		res, err := s.Login(ctx, email, "secret1")
		require.NoError(t, err)
		assert.Equal(t, reg.User, res.User)
	}
}

func TestLogin_UnifiedFailure(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	_, wrongPassword := s.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := s.Login(ctx, "nobody@example.com", "secret1")

	require.ErrorIs(t, wrongPassword, common.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, common.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestLogin_LookupError(t *testing.T) {
	repo := newFakeRepo()
	repo.findByEmailErr = errBoom
	s := newTestService(t, repo)

	_, err := s.Login(context.Background(), "alice@example.com", "secret1")
	assert.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

// --- tokens ---

func TestIssuedTokens_VerifyToAccount(t *testing.T) {
	s := newTestService(t, nil)
	signer := newTestSigner()
	ctx := context.Background()

	reg, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	login, err := s.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	for _, res := range []*models.AuthResult{reg, login} {
		for _, tok := range []string{res.AccessToken, res.RefreshToken} {
			claims, err := signer.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, reg.User.ID, claims.AccountID)
		}
	}
}

func TestIssueTokenPair_TTLs(t *testing.T) {
	s := newTestService(t, nil)
	signer := newTestSigner()

	before := time.Now()
	pair, err := s.issueTokenPair("acc-1")
	require.NoError(t, err)

	access, err := signer.Verify(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := signer.Verify(pair.RefreshToken)
	require.NoError(t, err)

	assert.WithinDuration(t, before.Add(time.Hour), access.ExpiresAt.Time, 5*time.Second)
	assert.WithinDuration(t, before.Add(15*24*time.Hour), refresh.ExpiresAt.Time, 5*time.Second)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
}

// --- RefreshTokens ---

func TestRefreshTokens_Rejects(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	expired, err := newTestSigner().Sign(auth.Claims{AccountID: "acc-1"}, -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.NewJWTSigner([]byte("other-secret")).Sign(auth.Claims{AccountID: "acc-1"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"empty", "", common.ErrMissingToken},
		{"garbage", "not-a-token", common.ErrInvalidToken},
		{"expired", expired, common.ErrInvalidToken},
		{"wrong secret", foreign, common.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.RefreshTokens(ctx, tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRefreshTokens_AccountGone(t *testing.T) {
	s := newTestService(t, nil)

	token, err := newTestSigner().Sign(auth.Claims{AccountID: "deleted-account"}, time.Hour)
	require.NoError(t, err)

	_, err = s.RefreshTokens(context.Background(), token)
	assert.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestRefreshTokens_LookupError(t *testing.T) {
	repo := newFakeRepo()
	repo.findByIDErr = errBoom
	s := newTestService(t, repo)

	token, err := newTestSigner().Sign(auth.Claims{AccountID: "acc-1"}, time.Hour)
	require.NoError(t, err)

	_, err = s.RefreshTokens(context.Background(), token)
	assert.ErrorIs(t, err, errBoom)
}

func TestRefreshTokens_Rotates(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	reg, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	seen := map[string]bool{reg.AccessToken: true}
	refresh := reg.RefreshToken
	for i := 0; i < 5; i++ {
		res, err := s.RefreshTokens(ctx, refresh)
		require.NoError(t, err)

		assert.Equal(t, reg.User, res.User)
		assert.False(t, seen[res.AccessToken], "access token reused")
		assert.NotEqual(t, refresh, res.RefreshToken)
		seen[res.AccessToken] = true
		refresh = res.RefreshToken
	}

	// the original refresh token is still accepted until it expires
	_, err = s.RefreshTokens(ctx, reg.RefreshToken)
	assert.NoError(t, err)
}

// --- Profile / ValidateAccessToken ---

func TestProfile(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	reg, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	p, err := s.Profile(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User, p)

	_, err = s.Profile(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrAccountNotFound)
}

func TestValidateAccessToken(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	reg, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)

	id, err := s.ValidateAccessToken(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id)

	_, err = s.ValidateAccessToken(ctx, "")
	assert.ErrorIs(t, err, common.ErrMissingToken)

	_, err = s.ValidateAccessToken(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

// --- scenario ---

func TestAliceScenario(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	reg, err := s.Register(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.False(t, reg.User.IsAdmin)
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotEmpty(t, reg.RefreshToken)

	_, err = s.Register(ctx, "alice@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrAccountExists)

	_, err = s.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	login, err := s.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
	assert.NotEqual(t, reg.AccessToken, login.AccessToken)
	assert.NotEqual(t, reg.RefreshToken, login.RefreshToken)
}
