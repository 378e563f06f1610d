package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockfolio/api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// The production implementation is PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore defines the user persistence operations the auth service needs
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}
