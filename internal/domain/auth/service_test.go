package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[id.ID]*User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[id.ID]*User)}
}

func (r *memUserRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *memUserRepo) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memUserRepo) List(_ context.Context) ([]*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*RefreshToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (r *memTokenRepo) SaveRefreshToken(_ context.Context, t *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.TokenHash] = &cp
	return nil
}

func (r *memTokenRepo) GetRefreshToken(_ context.Context, tokenHash string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", tokenHash)
	}
	cp := *t
	return &cp, nil
}

func (r *memTokenRepo) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (r *memTokenRepo) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestAuth(t *testing.T) (*Service, *memUserRepo) {
	t.Helper()
	users := newMemUserRepo()
	cfg := DefaultServiceConfig()
	cfg.MaxLoginAttempts = 3
	svc := NewService(users, newMemTokenRepo(), passthroughTx{},
		NewJWTService(DefaultJWTConfig("test-secret")), cfg)
	return svc, users
}

func register(t *testing.T, svc *Service, email, password string) *User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: password,
		Name:     "Test User",
		Role:     actor.RoleInternalEmployee,
	})
	require.NoError(t, err)
	return u
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	u := register(t, svc, "Staff@Example.com", "secret-password")
	assert.Equal(t, "staff@example.com", u.Email, "email is normalized")

	tokens, logged, err := svc.Login(ctx, Credentials{Email: "staff@example.com", Password: "secret-password"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.RefreshToken)

	// the access token identifies the actor
	a, err := svc.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), a.UserID)
	assert.Equal(t, actor.RoleInternalEmployee, a.Role)
}

func TestAuth_Register_Validation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "", Password: "long-enough", Role: actor.RoleAdmin})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "short", Role: actor.RoleAdmin})
	require.Error(t, err)

	register(t, svc, "dup@example.com", "secret-password")
	_, err = svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "secret-password", Role: actor.RoleAdmin})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)

	// contractor login without a linked record
	_, err = svc.Register(ctx, RegisterRequest{Email: "c@example.com", Password: "secret-password", Role: actor.RoleContractor})
	require.Error(t, err)
}

func TestAuth_LoginFailuresLockAccount(t *testing.T) {
	svc, users := newTestAuth(t)
	ctx := context.Background()
	u := register(t, svc, "staff@example.com", "secret-password")

	for i := 0; i < 3; i++ {
		_, _, err := svc.Login(ctx, Credentials{Email: u.Email, Password: "wrong"})
		require.Error(t, err)
	}

	// correct password is now rejected by the lockout
	_, _, err := svc.Login(ctx, Credentials{Email: u.Email, Password: "secret-password"})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// expiring the lock restores access and clears the counter
	stored, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	past := time.Now().Add(-time.Minute)
	stored.LockedUntil = &past
	require.NoError(t, users.Update(ctx, stored))

	_, logged, err := svc.Login(ctx, Credentials{Email: u.Email, Password: "secret-password"})
	require.NoError(t, err)
	assert.Equal(t, 0, logged.FailedLoginAttempts)
}

func TestAuth_RefreshRotation(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	u := register(t, svc, "staff@example.com", "secret-password")

	tokens, _, err := svc.Login(ctx, Credentials{Email: u.Email, Password: "secret-password"})
	require.NoError(t, err)

	fresh, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// the old token is single-use
	_, err = svc.RefreshToken(ctx, tokens.RefreshToken)
	require.Error(t, err)

	// logout kills the fresh one too
	require.NoError(t, svc.Logout(ctx, u.ID))
	_, err = svc.RefreshToken(ctx, fresh.RefreshToken)
	require.Error(t, err)
}

func TestAuth_DisabledAccount(t *testing.T) {
	svc, _ := newTestAuth(t)
	ctx := context.Background()
	u := register(t, svc, "staff@example.com", "secret-password")

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	_, _, err := svc.Login(ctx, Credentials{Email: u.Email, Password: "secret-password"})
	require.Error(t, err)
}

func TestJWT_TamperedTokenRejected(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	u := NewUser("staff@example.com", "hash", actor.RoleAdmin)

	token, _, err := jwtSvc.GenerateAccessToken(u)
	require.NoError(t, err)

	_, err = jwtSvc.ValidateToken(token + "x")
	require.Error(t, err)

	other := NewJWTService(DefaultJWTConfig("other-secret"))
	_, err = other.ValidateToken(token)
	require.Error(t, err)

	_, err = jwtSvc.ValidateToken(strings.Repeat("a", 40))
	require.Error(t, err)
}
