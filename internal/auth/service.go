package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/stockfolio/api/internal/logging"
	"github.com/stockfolio/api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// AuthResult is the outcome of a successful signup or signin: a bearer
// token and the identity it is bound to.
type AuthResult struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresIn int64      `json:"expires_in"`
	User      *user.User `json:"user"`
}

// Service handles authentication business logic
type Service struct {
	userStore     UserStore
	hasher        *PasswordHasher
	tokenService  TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	userStore UserStore,
	hasher *PasswordHasher,
	tokenService TokenService,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		userStore:     userStore,
		hasher:        hasher,
		tokenService:  tokenService,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Signup creates a new user account and issues a token bound to it.
// The user row is the source of truth: if token issuance fails after the
// insert, the error is surfaced but the account exists and can sign in.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	// Validate input
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	// Hash password using argon2id
	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user in database
	newUser, err := s.userStore.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenService.CreateToken(newUser.ID, newUser.Email, s.tokenDuration)
	if err != nil {
		// The account is already persisted; signin still works
		s.logger.Error("token issuance failed after signup", "user_id", newUser.ID, "error", err)
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return s.authResult(token, newUser), nil
}

// Signin authenticates a user and issues a token. Unknown email and wrong
// password deliberately collapse into the same error so the response never
// reveals which check failed; missing fields are a validation error and
// reported as such before any credential is examined.
func (s *Service) Signin(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	existingUser, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return s.authResult(token, existingUser), nil
}

// CurrentUser resolves the account behind a verified token. A token can
// outlive its account; in that case the caller gets user.ErrNotFound and
// should treat the token as no longer valid.
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (s *Service) authResult(token string, u *user.User) *AuthResult {
	return &AuthResult{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenDuration.Seconds()),
		User:      u,
	}
}
