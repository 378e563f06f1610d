package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockfolio/api/internal/logging"
	"github.com/stockfolio/api/internal/user"
)

// fakeUserStore is an in-memory UserStore for service tests
type fakeUserStore struct {
	byEmail map[string]*user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*user.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, name, email, passwordHash string) (*user.User, error) {
	if _, exists := s.byEmail[email]; exists {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	s.byEmail[email] = u
	return u, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

// failingTokenService always fails issuance, for the degraded signup path
type failingTokenService struct{}

func (failingTokenService) CreateToken(uuid.UUID, string, time.Duration) (string, error) {
	return "", errors.New("issuance failed")
}

func (failingTokenService) VerifyToken(string) (*TokenClaims, error) {
	return nil, ErrInvalidToken
}

func newTestService(t *testing.T, store UserStore) (*Service, *PasetoService) {
	t.Helper()
	tokens, err := NewPasetoService(testKey())
	require.NoError(t, err)
	return NewService(store, NewPasswordHasher(), tokens, logging.NewLogger(true), time.Hour), tokens
}

func TestSignupAndSignin(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	service, tokens := newTestService(t, store)

	result, err := service.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "Alice", result.User.Name)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, "Bearer", result.TokenType)

	// Token is bound to the new identity
	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	// Same credentials sign in afterwards
	signin, err := service.Signin(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, signin.User.ID)
}

func TestSignupValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, newFakeUserStore())

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{name: "missing name", userName: "", email: "a@example.com", password: "password123", wantErr: ErrNameRequired},
		{name: "missing email", userName: "Alice", email: "", password: "password123", wantErr: ErrEmailRequired},
		{name: "bad email", userName: "Alice", email: "not-an-email", password: "password123", wantErr: ErrInvalidEmailFormat},
		{name: "missing password", userName: "Alice", email: "a@example.com", password: "", wantErr: ErrPasswordRequired},
		{name: "short password", userName: "Alice", email: "a@example.com", password: "short", wantErr: ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Signup(ctx, tt.userName, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, newFakeUserStore())

	_, err := service.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Conflict regardless of the password
	_, err = service.Signup(ctx, "Mallory", "alice@example.com", "другойpassword")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestSigninValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, newFakeUserStore())

	// Missing fields are a validation failure, not a credentials failure
	_, err := service.Signin(ctx, "", "password123")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = service.Signin(ctx, "alice@example.com", "")
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = service.Signin(ctx, "", "")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	service, _ := newTestService(t, store)

	result, err := service.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	u, err := service.CurrentUser(ctx, result.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, u.ID)
	assert.Equal(t, "alice@example.com", u.Email)

	// An id with no backing account resolves to not-found
	_, err = service.CurrentUser(ctx, uuid.New())
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestSigninInvalidCredentialsIndistinguishable(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	service, _ := newTestService(t, store)

	_, err := service.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	// Unknown email and wrong password must yield the identical error
	_, unknownErr := service.Signin(ctx, "nobody@example.com", "password123")
	_, wrongErr := service.Signin(ctx, "alice@example.com", "wrong password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestSignupTokenIssuanceFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	service := NewService(store, NewPasswordHasher(), failingTokenService{}, logging.NewLogger(true), time.Hour)

	_, err := service.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.Error(t, err)

	// The row is the source of truth: the account survives and can sign in
	// once a working token service is back
	recovered, tokens := newTestService(t, store)
	result, err := recovered.Signin(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	claims, err := tokens.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
}
