package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claim keys inside the encrypted payload. The account id travels as a
// string and is parsed back into a uuid.UUID at the middleware boundary.
const (
	claimUserID = "user_id"
	claimEmail  = "email"
)

// TokenClaims is the identity a decrypted bearer token carries. UserID is
// what the holdings routes scope every query to.
type TokenClaims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// PasetoService issues and checks PASETO v4.local tokens (symmetric
// XChaCha20-Poly1305). Tokens are opaque to clients and carry no server-side
// state: there is no revocation list, expiry is the only way a token dies.
type PasetoService struct {
	key    paseto.V4SymmetricKey
	parser paseto.Parser
}

// NewPasetoService builds the token service from raw PASETO_KEY material.
// The key must be exactly 32 bytes; there is no fallback default.
func NewPasetoService(keyBytes []byte) (*PasetoService, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("paseto key must be exactly 32 bytes, got %d", len(keyBytes))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to build symmetric key: %w", err)
	}

	// The default parser rules reject tokens outside their validity window
	return &PasetoService{key: key, parser: paseto.NewParser()}, nil
}

// CreateToken issues a token bound to the given account, valid for duration
// from now.
func (s *PasetoService) CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString(claimUserID, userID.String())
	token.SetString(claimEmail, email)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyToken decrypts and validates a token. An expired token surfaces as
// ErrExpiredToken; every other failure, including a token that decrypts but
// lacks an expected claim, collapses into ErrInvalidToken.
func (s *PasetoService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	token, err := s.parser.ParseV4Local(s.key, tokenStr, nil)
	if err != nil {
		// Rule errors only occur after a successful decrypt, so the token
		// was genuinely ours but past its window
		if errors.Is(err, &paseto.RuleError{}) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return claimsFrom(token)
}

func claimsFrom(token *paseto.Token) (*TokenClaims, error) {
	claims := new(TokenClaims)

	var err error
	if claims.UserID, err = token.GetString(claimUserID); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Email, err = token.GetString(claimEmail); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt, err = token.GetIssuedAt(); err != nil {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt, err = token.GetExpiration(); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
