package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetByID returns nil, nil when the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error) // returns the user and a signed session token
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
