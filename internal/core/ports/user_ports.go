package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/survey/internal/core/domain"
)

// UserRepository lookups return a nil user and a nil error when nothing matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// Create reports domain.ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
