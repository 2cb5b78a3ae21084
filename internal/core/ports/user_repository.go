package ports

import (
	"context"

	"github.com/instroom/instroom-web/internal/core/domain"
)

// UserRepository is the persistence contract for account records.
//
// Implementations must enforce email uniqueness at the storage layer and
// report a violation from Create as domain.ErrEmailTaken.
type UserRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no record matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PasswordHasher hides the hashing primitive from the account workflow.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
